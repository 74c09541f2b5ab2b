package apiref

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleReference = `
[CLIENT METHODS]
$client->Message(int32 type, std::string message);
$client->AddEXP(uint32 amount);
this line is prose, not a method

[NPC METHODS]
$npc->SignalNPC(int signal_id);
`

func TestParseMethods(t *testing.T) {
	methods, err := ParseMethods(strings.NewReader(sampleReference))
	require.NoError(t, err)
	require.Len(t, methods, 2)

	client := methods["CLIENT"]
	require.Len(t, client, 2)
	require.Equal(t, "$client", client[0].Var)
	require.Equal(t, "Message", client[0].Name)
	require.Equal(t, "int32 type, std::string message", client[0].Args)

	npc := methods["NPC"]
	require.Len(t, npc, 1)
	require.Equal(t, "SignalNPC", npc[0].Name)
}

// TestParseMethodsIgnoresPreamble verifies method lines before any category
// header are dropped.
func TestParseMethodsIgnoresPreamble(t *testing.T) {
	methods, err := ParseMethods(strings.NewReader("$client->Message(1);\n[CLIENT METHODS]\n"))
	require.NoError(t, err)
	require.Empty(t, methods["CLIENT"])
}

func TestLoadMethodsMissingFile(t *testing.T) {
	methods, err := LoadMethods(filepath.Join(t.TempDir(), "none.txt"))
	require.NoError(t, err)
	require.Empty(t, methods)
}

// TestLoadEventPrefsFallback verifies a missing preference file yields the
// sorted default set.
func TestLoadEventPrefsFallback(t *testing.T) {
	events := LoadEventPrefs(filepath.Join(t.TempDir(), "none.json"))
	require.Len(t, events, len(DefaultCommonEvents))
	require.True(t, sort.StringsAreSorted(events))
	require.Contains(t, events, "EVENT_SAY")
}

// TestLoadEventPrefsFiltersUnknown verifies saved names not in the known
// event list are dropped on load.
func TestLoadEventPrefsFiltersUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, SaveEventPrefs(path, []string{"EVENT_DEATH", "EVENT_MADE_UP", "EVENT_SPAWN"}))

	events := LoadEventPrefs(path)
	require.Equal(t, []string{"EVENT_DEATH", "EVENT_SPAWN"}, events)
}

// TestLoadEventPrefsAllUnknown verifies a file with nothing usable falls
// back to the defaults instead of an empty menu.
func TestLoadEventPrefsAllUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, SaveEventPrefs(path, []string{"EVENT_MADE_UP"}))

	events := LoadEventPrefs(path)
	require.Len(t, events, len(DefaultCommonEvents))
}
