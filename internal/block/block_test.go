package block

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestMarshalRoundTrip verifies a nested forest survives serialization.
func TestMarshalRoundTrip(t *testing.T) {
	forest := []*Block{
		{
			Kind:   KindEvent,
			Label:  "EVENT_SAY",
			Params: map[string]any{"event_name": "EVENT_SAY"},
			Children: []*Block{
				{
					Kind:   KindIf,
					Label:  `if ($text =~ /hail/i)`,
					Params: map[string]any{"expr": `$text =~ /hail/i`},
					Children: []*Block{
						{Kind: KindQuestCall, Label: "quest::say", Params: map[string]any{"quest_fn": "say", "args": `"Hello!"`}},
					},
				},
			},
		},
	}

	data, err := Marshal(forest)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	if diff := cmp.Diff(forest, restored); diff != "" {
		t.Fatalf("forest changed across marshal/unmarshal (-want +got):\n%s", diff)
	}
}

// TestMarshalNil verifies a nil forest serializes as an empty array.
func TestMarshalNil(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestIsContainer(t *testing.T) {
	for _, k := range []Kind{KindEvent, KindIf, KindElsif, KindElse, KindWhile, KindFor, KindForeach} {
		require.True(t, IsContainer(k), "kind %s", k)
	}
	for _, k := range []Kind{KindTimer, KindReturn, KindRawPerl, KindPlugin, KindComment} {
		require.False(t, IsContainer(k), "kind %s", k)
	}
}

// TestIntParam covers the coercions produced by JSON decoding and the UI.
func TestIntParam(t *testing.T) {
	b := &Block{Params: map[string]any{
		"int":    5,
		"float":  float64(30),
		"frac":   float64(1.5),
		"text":   " 12 ",
		"bad":    "soon",
		"nilval": nil,
	}}

	n, ok := b.IntParam("int")
	require.True(t, ok)
	require.Equal(t, 5, n)

	n, ok = b.IntParam("float")
	require.True(t, ok)
	require.Equal(t, 30, n)

	_, ok = b.IntParam("frac")
	require.False(t, ok)

	n, ok = b.IntParam("text")
	require.True(t, ok)
	require.Equal(t, 12, n)

	_, ok = b.IntParam("bad")
	require.False(t, ok)
	_, ok = b.IntParam("nilval")
	require.False(t, ok)
	_, ok = b.IntParam("absent")
	require.False(t, ok)
}

func TestStringParam(t *testing.T) {
	b := &Block{Params: map[string]any{"s": "hi", "n": float64(3), "nil": nil}}
	require.Equal(t, "hi", b.StringParam("s"))
	require.Equal(t, "3", b.StringParam("n"))
	require.Equal(t, "", b.StringParam("nil"))
	require.Equal(t, "", b.StringParam("absent"))
}

func TestNewUsesDefaultLabel(t *testing.T) {
	b := New(KindForeach)
	require.Equal(t, KindForeach, b.Kind)
	require.Equal(t, "foreach my $x (@list)", b.Label)
	require.NotNil(t, b.Params)
}

func TestWalkOrder(t *testing.T) {
	forest := []*Block{
		{Kind: KindEvent, Label: "a", Children: []*Block{
			{Kind: KindIf, Label: "b", Children: []*Block{{Kind: KindReturn, Label: "c"}}},
			{Kind: KindNext, Label: "d"},
		}},
		{Kind: KindComment, Label: "e"},
	}
	var got []string
	Walk(forest, func(b *Block) { got = append(got, b.Label) })
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}
