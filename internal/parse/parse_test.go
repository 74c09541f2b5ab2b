package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"questforge/internal/block"
	"questforge/internal/codegen"
	"questforge/internal/plugin"
)

func testRegistry() *plugin.Registry {
	reg := plugin.NewRegistry("")
	reg.Put(plugin.Def{
		ID:       "say_to_client",
		Name:     "Say To Client",
		Template: `plugin::SayToClient($client, "{message}");`,
		Params:   []plugin.Param{{Name: "message"}},
	})
	return reg
}

func TestParseEvent(t *testing.T) {
	src := strings.Join([]string{
		"sub EVENT_SAY {",
		`    quest::say("Hello!");`,
		"}",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 1)

	ev := forest[0]
	require.Equal(t, block.KindEvent, ev.Kind)
	require.Equal(t, "EVENT_SAY", ev.StringParam("event_name"))
	require.Len(t, ev.Children, 1)

	call := ev.Children[0]
	require.Equal(t, block.KindQuestCall, call.Kind)
	require.Equal(t, "say", call.StringParam("quest_fn"))
	require.Equal(t, `"Hello!"`, call.StringParam("args"))
}

// TestParseConditionalChain verifies elsif/else become siblings of the if,
// never its children.
func TestParseConditionalChain(t *testing.T) {
	src := strings.Join([]string{
		"sub EVENT_SAY {",
		"    if ($a) {",
		"        return 1;",
		"    }",
		"    elsif ($b) {",
		"        return 2;",
		"    }",
		"    else {",
		"        return;",
		"    }",
		"}",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 3)

	kinds := []block.Kind{}
	for _, c := range forest[0].Children {
		kinds = append(kinds, c.Kind)
	}
	require.Equal(t, []block.Kind{block.KindIf, block.KindElsif, block.KindElse}, kinds)
	require.Len(t, forest[0].Children[1].Children, 1)
}

// TestParseForLoop verifies numeric bounds decode to ints while the loop
// structure is captured field by field.
func TestParseForLoop(t *testing.T) {
	forest := Parse("for (my $i = 0; $i <= 10; $i++) {\n}", nil)
	require.Len(t, forest, 1)

	b := forest[0]
	require.Equal(t, block.KindFor, b.Kind)
	require.Equal(t, "$i", b.StringParam("var_name"))
	require.Equal(t, 0, b.Params["start"])
	require.Equal(t, 10, b.Params["end"])
	require.Equal(t, "<=", b.StringParam("cmp_op"))
	require.Equal(t, "++", b.StringParam("inc_expr"))
}

// TestParseForLoopExprBounds verifies non-numeric bounds stay as text.
func TestParseForLoopExprBounds(t *testing.T) {
	forest := Parse("for (my $i = 0; $i < $count; $i++) {\n}", nil)
	require.Len(t, forest, 1)
	require.Equal(t, 0, forest[0].Params["start"])
	require.Equal(t, "$count", forest[0].Params["end"])
	require.Equal(t, "<", forest[0].StringParam("cmp_op"))
}

// TestParseForLoopMismatchedVar verifies a for whose three variables
// disagree falls through to raw passthrough.
func TestParseForLoopMismatchedVar(t *testing.T) {
	forest := Parse("for (my $i = 0; $j < 5; $i++) {", nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindRawPerl, forest[0].Kind)
}

func TestParseTimer(t *testing.T) {
	forest := Parse(`quest::settimer("respawn", 30);`, nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindTimer, forest[0].Kind)
	require.Equal(t, "respawn", forest[0].StringParam("name"))
	require.Equal(t, 30, forest[0].Params["seconds"])
}

// TestParseTimerExprSeconds verifies a settimer with a non-numeric duration
// stays a generic quest call so nothing is lost.
func TestParseTimerExprSeconds(t *testing.T) {
	forest := Parse(`quest::settimer("tick", $delay);`, nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindQuestCall, forest[0].Kind)
	require.Equal(t, "settimer", forest[0].StringParam("quest_fn"))
}

func TestParseBuckets(t *testing.T) {
	src := strings.Join([]string{
		`quest::set_data("stage", 2);`,
		`$stage = quest::get_data("stage");`,
		`quest::delete_data("stage");`,
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 3)
	require.Equal(t, block.KindSetBucket, forest[0].Kind)
	require.Equal(t, `"stage"`, forest[0].StringParam("key"))
	require.Equal(t, "2", forest[0].StringParam("value"))

	require.Equal(t, block.KindGetBucket, forest[1].Kind)
	require.Equal(t, "$stage", forest[1].StringParam("var_name"))

	require.Equal(t, block.KindDeleteBucket, forest[2].Kind)
	require.Equal(t, `"stage"`, forest[2].StringParam("key"))
}

func TestParseDeclarations(t *testing.T) {
	src := strings.Join([]string{
		"my $count = 0;",
		`our $state = "idle";`,
		"my $bare;",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 3)
	require.Equal(t, block.KindMyVar, forest[0].Kind)
	require.Equal(t, "0", forest[0].StringParam("value"))
	require.Equal(t, block.KindOurVar, forest[1].Kind)
	require.Equal(t, block.KindMyVar, forest[2].Kind)
	require.Equal(t, "", forest[2].StringParam("value"))
}

// TestParseMultilineDecl verifies a declaration spanning lines is kept
// verbatim as one raw block.
func TestParseMultilineDecl(t *testing.T) {
	src := strings.Join([]string{
		"my %itemcount = (",
		"    1001 => 1,",
		"    1002 => 2,",
		");",
		"quest::say(\"done\");",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 2)
	require.Equal(t, block.KindRawPerl, forest[0].Kind)
	require.Contains(t, forest[0].Label, "my %itemcount")
	require.Contains(t, forest[0].StringParam("code"), "1002 => 2,")
	require.Equal(t, block.KindQuestCall, forest[1].Kind)
}

// TestParseCustomSub verifies a non-event subroutine is swallowed whole
// into a raw block, tracking brace depth across its body.
func TestParseCustomSub(t *testing.T) {
	src := strings.Join([]string{
		"sub give_reward {",
		"    my $client = shift;",
		"    if ($client) {",
		"        $client->Message(15, \"Here.\");",
		"    }",
		"}",
		"sub EVENT_SPAWN {",
		"}",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 2)
	require.Equal(t, block.KindRawPerl, forest[0].Kind)
	require.Equal(t, "Raw Perl (sub give_reward)", forest[0].Label)
	require.Equal(t, block.KindEvent, forest[1].Kind)
}

// TestParseComments verifies consecutive comment lines merge into one
// block and a blank line ends the run.
func TestParseComments(t *testing.T) {
	src := strings.Join([]string{
		"# first",
		"# second",
		"",
		"# third",
	}, "\n")

	forest := Parse(src, nil)
	require.Len(t, forest, 2)
	require.Equal(t, block.KindComment, forest[0].Kind)
	require.Equal(t, "first\nsecond", forest[0].StringParam("text"))
	require.Equal(t, "third", forest[1].StringParam("text"))
}

func TestParseMethodCall(t *testing.T) {
	forest := Parse(`$client->Message(15, "Hello");`, nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindMethod, forest[0].Kind)
	require.Equal(t, "$client", forest[0].StringParam("target"))
	require.Equal(t, "Message", forest[0].StringParam("method"))
	require.Equal(t, `15, "Hello"`, forest[0].StringParam("args"))
}

func TestParseIndexedAssign(t *testing.T) {
	forest := Parse(`$itemcount{$item} = 3;`, nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindArrayAssign, forest[0].Kind)
	require.Equal(t, `$itemcount{$item}`, forest[0].StringParam("lhs"))
}

func TestParseReturnAndNext(t *testing.T) {
	forest := Parse("return 1;\nreturn;\nnext if ($skip);", nil)
	require.Len(t, forest, 3)
	require.Equal(t, block.KindReturn, forest[0].Kind)
	require.Equal(t, "1", forest[0].StringParam("value"))
	require.Equal(t, block.KindReturn, forest[1].Kind)
	require.Equal(t, "", forest[1].StringParam("value"))
	require.Equal(t, block.KindNext, forest[2].Kind)
	require.Equal(t, "if ($skip)", forest[2].StringParam("expr"))
}

// TestParsePluginRecognition verifies catalog templates are matched back
// into plugin blocks with their parameters recovered.
func TestParsePluginRecognition(t *testing.T) {
	forest := Parse(`plugin::SayToClient($client, "Welcome!");`, testRegistry())
	require.Len(t, forest, 1)
	require.Equal(t, block.KindPlugin, forest[0].Kind)
	require.Equal(t, "say_to_client", forest[0].StringParam("plugin_id"))

	params, ok := forest[0].Params["plugin_params"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Welcome!", params["message"])
}

// TestParseRawFallback verifies an unrecognized line survives verbatim,
// minus leading indentation.
func TestParseRawFallback(t *testing.T) {
	forest := Parse("    push @list, $item unless $seen{$item}++;", nil)
	require.Len(t, forest, 1)
	require.Equal(t, block.KindRawPerl, forest[0].Kind)
	require.Equal(t, "push @list, $item unless $seen{$item}++;", forest[0].StringParam("code"))
}

// TestRoundTripStable verifies the core transcoding property: once a
// script has been normalized by one parse/generate pass, further passes
// are byte-identical.
func TestRoundTripStable(t *testing.T) {
	reg := testRegistry()
	src := strings.Join([]string{
		"# Guard captain dialogue",
		"sub EVENT_SAY {",
		"    if ($text =~ /hail/i) {",
		`        plugin::SayToClient($client, "Well met.");`,
		`        quest::settimer("dismiss", 30);`,
		"    }",
		"    elsif ($text =~ /duty/i) {",
		`        quest::set_data("met_captain", 1);`,
		"    }",
		"    else {",
		"        return;",
		"    }",
		"}",
		"",
		"sub EVENT_TIMER {",
		`    if ($timer eq "dismiss") {`,
		`        quest::stoptimer("dismiss");`,
		"    }",
		"}",
	}, "\n")

	first := codegen.Generate(Parse(src, reg), reg)
	second := codegen.Generate(Parse(first, reg), reg)
	require.Equal(t, first, second)
}
