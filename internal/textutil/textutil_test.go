package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	require.Equal(t, Hash("abc"), Hash("abc"))
	require.NotEqual(t, Hash("abc"), Hash("abd"))
	require.Len(t, Hash(""), 64)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "exact", Truncate("exact", 5))
	require.Equal(t, "lon...", Truncate("longer", 3))
}

func TestStripStringsAndComment(t *testing.T) {
	require.Equal(t, `quest::say("");`, StripStringsAndComment(`quest::say("brace { inside");`))
	require.Equal(t, "my $x = 1; ", StripStringsAndComment("my $x = 1; # closes }"))
	require.Equal(t, `say('')`, StripStringsAndComment(`say('{')`))
}

func TestBraceDelta(t *testing.T) {
	require.Equal(t, 1, BraceDelta("sub EVENT_SAY {"))
	require.Equal(t, -1, BraceDelta("}"))
	require.Equal(t, 0, BraceDelta(`quest::say("ignore { this }");`))
	require.Equal(t, 0, BraceDelta("if ($a) { } # and { a comment"))
	require.Equal(t, 1, BraceDelta(`$h{"k"} = sub {`))
}
