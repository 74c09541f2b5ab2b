// Package lint checks a block tree (and the text generated from it) for
// likely breakage before a script is deployed. Findings are returned as
// data, never as errors, and never block generation or export.
package lint

import (
	"fmt"
	"strings"

	"questforge/internal/block"
	"questforge/internal/codegen"
	"questforge/internal/plugin"
	"questforge/internal/template"
)

// Severity classifies how likely a finding is to break the script.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Issue is a single validation finding. Block is an identity-only
// back-reference for navigation; it is never serialized.
type Issue struct {
	Severity Severity
	Message  string
	Where    string
	Block    *block.Block
}

// Validate runs every check over the block forest and returns the findings
// in fixed order: structure, plugin integrity, timers, per-block lexical
// heuristics, then a whole-script pass over the generated text. The
// registry may be nil; plugin blocks then report as unknown.
func Validate(blocks []*block.Block, reg *plugin.Registry) []Issue {
	var issues []Issue

	issues = append(issues, checkStructure(blocks)...)
	issues = append(issues, checkPlugins(blocks, reg)...)
	issues = append(issues, checkTimers(blocks)...)
	issues = append(issues, checkBlockText(blocks)...)
	issues = append(issues, checkWholeScript(blocks, reg)...)

	return issues
}

func checkStructure(blocks []*block.Block) []Issue {
	var issues []Issue

	hasEvent := false
	counts := make(map[string]int)
	order := []string{}
	for _, b := range blocks {
		if b.Kind != block.KindEvent {
			continue
		}
		hasEvent = true
		ev := strings.TrimSpace(b.StringParam("event_name"))
		if ev == "" {
			continue
		}
		if counts[ev] == 0 {
			order = append(order, ev)
		}
		counts[ev]++
	}

	if !hasEvent {
		issues = append(issues, Issue{SeverityWarn, "No EVENT block found (script will do nothing).", "root", nil})
	}
	for _, ev := range order {
		if n := counts[ev]; n > 1 {
			issues = append(issues, Issue{
				SeverityWarn,
				fmt.Sprintf("Duplicate top-level handler: %s appears %d times (often accidental).", ev, n),
				ev,
				nil,
			})
		}
	}
	return issues
}

func checkPlugins(blocks []*block.Block, reg *plugin.Registry) []Issue {
	var issues []Issue
	block.Walk(blocks, func(b *block.Block) {
		if b.Kind != block.KindPlugin {
			return
		}
		pid := strings.TrimSpace(b.StringParam("plugin_id"))
		if pid == "" {
			issues = append(issues, Issue{SeverityError, "Plugin block has no plugin selected.", b.Label, b})
			return
		}
		var def plugin.Def
		ok := false
		if reg != nil {
			def, ok = reg.Get(pid)
		}
		if !ok {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("Unknown plugin id '%s' (not found in catalog).", pid), b.Label, b})
			return
		}
		params, _ := b.Params["plugin_params"].(map[string]any)
		if _, err := template.Render(def.Template, params); err != nil {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("Plugin template render failed: %v.", err), b.Label, b})
		}
	})
	return issues
}

func checkTimers(blocks []*block.Block) []Issue {
	var issues []Issue

	timerSet := false
	block.Walk(blocks, func(b *block.Block) {
		if b.Kind != block.KindTimer {
			return
		}
		name := strings.TrimSpace(b.StringParam("name"))
		if name == "" {
			issues = append(issues, Issue{SeverityError, "Timer block missing timer name.", b.Label, b})
		} else {
			timerSet = true
		}
		secs, ok := b.IntParam("seconds")
		switch {
		case !ok:
			issues = append(issues, Issue{SeverityError, "Timer seconds is not an integer.", b.Label, b})
		case secs < 0:
			issues = append(issues, Issue{SeverityError, "Timer seconds must be >= 0.", b.Label, b})
		}
	})

	hasTimerHandler := false
	for _, b := range blocks {
		if b.Kind == block.KindEvent && b.StringParam("event_name") == "EVENT_TIMER" {
			hasTimerHandler = true
			break
		}
	}
	if timerSet && !hasTimerHandler {
		issues = append(issues, Issue{SeverityWarn, "You set timers but have no EVENT_TIMER handler.", "root", nil})
	}
	return issues
}

func checkBlockText(blocks []*block.Block) []Issue {
	var issues []Issue
	block.Walk(blocks, func(b *block.Block) {
		switch b.Kind {
		case block.KindRawPerl:
			// Raw Perl may legitimately open a brace or paren closed by a
			// later block, so only quotes are checked per block.
			issues = append(issues, lintText(b.StringParam("code"), b.Label, b, true, false, false)...)

		case block.KindIf, block.KindWhile:
			expr := strings.TrimSpace(b.StringParam("expr"))
			if expr == "" {
				issues = append(issues, Issue{SeverityError, "Empty condition expression.", b.Label, b})
				return
			}
			issues = append(issues, lintText(expr, b.Label, b, true, true, true)...)

		case block.KindQuestCall:
			issues = append(issues, lintText(b.StringParam("args"), b.Label, b, true, true, true)...)
		}
	})
	return issues
}

// checkWholeScript re-runs the balance checks over the full generated text
// to catch mismatches that span blocks and are invisible per block.
func checkWholeScript(blocks []*block.Block, reg *plugin.Registry) []Issue {
	var issues []Issue
	text := codegen.Generate(blocks, reg)

	if unbalancedQuotes(text) {
		issues = append(issues, Issue{SeverityError, "Whole script: unbalanced quotes.", "root", nil})
	}

	ok, delta := balancedPairs(text, '(', ')')
	switch {
	case !ok:
		issues = append(issues, Issue{SeverityError, "Whole script: too many ')'.", "root", nil})
	case delta != 0:
		issues = append(issues, Issue{SeverityError, "Whole script: missing ')'.", "root", nil})
	}

	ok, delta = balancedPairs(text, '{', '}')
	switch {
	case !ok:
		issues = append(issues, Issue{SeverityError, "Whole script: too many '}'.", "root", nil})
	case delta != 0:
		issues = append(issues, Issue{SeverityError, "Whole script: missing '}'.", "root", nil})
	}

	return issues
}

func lintText(text, where string, ref *block.Block, quotes, parens, braces bool) []Issue {
	var issues []Issue
	if text == "" {
		return nil
	}

	if quotes && unbalancedQuotes(text) {
		issues = append(issues, Issue{SeverityWarn, "Unbalanced quotes (missing \" or ').", where, ref})
	}

	if parens {
		ok, delta := balancedPairs(text, '(', ')')
		switch {
		case !ok:
			issues = append(issues, Issue{SeverityWarn, "Too many ')' (parentheses close before open).", where, ref})
		case delta != 0:
			issues = append(issues, Issue{SeverityWarn, "Unbalanced parentheses (missing ')').", where, ref})
		}
	}

	if braces {
		ok, delta := balancedPairs(text, '{', '}')
		switch {
		case !ok:
			issues = append(issues, Issue{SeverityWarn, "Too many '}' (brace close before open).", where, ref})
		case delta != 0:
			issues = append(issues, Issue{SeverityWarn, "Unbalanced braces (missing '}').", where, ref})
		}
	}

	for _, w := range suspiciousTokens(text) {
		issues = append(issues, Issue{SeverityInfo, w, where, ref})
	}
	return issues
}

// unbalancedQuotes reports whether the text ends still inside a ' or "
// string. Apostrophes inside the other quote type are ignored, backslash
// escapes respected. Not a full Perl lexer, but correct for quest scripts.
func unbalancedQuotes(s string) bool {
	inSingle, inDouble, esc := false, false, false
	for _, c := range s {
		if esc {
			esc = false
			continue
		}
		switch c {
		case '\\':
			esc = true
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		}
	}
	return inSingle || inDouble
}

// balancedPairs scans for open/close symbol balance outside both quote
// types. ok is false when a closer appears before its opener; otherwise
// delta > 0 means unclosed openers remain.
func balancedPairs(s string, open, close rune) (ok bool, delta int) {
	inSingle, inDouble, esc := false, false, false
	depth := 0
	for _, c := range s {
		if esc {
			esc = false
			continue
		}
		switch {
		case c == '\\':
			esc = true
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth < 0 {
				return false, depth
			}
		}
	}
	return true, depth
}

// suspiciousTokens flags cheap typo heuristics: doubled statement
// terminators and a trailing line-continuation backslash.
func suspiciousTokens(s string) []string {
	var out []string
	if s == "" {
		return nil
	}
	if strings.Contains(s, ";;") {
		out = append(out, "Contains ';;' (double semicolon).")
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.HasSuffix(strings.TrimRight(line, " \t"), `\`) {
			out = append(out, `Line ends with '\' (possible accidental escape).`)
			break
		}
	}
	return out
}
