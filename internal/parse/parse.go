// Package parse converts quest-script text back into a block tree. It is a
// line-oriented heuristic decompiler tuned to the generator's own idiom,
// not a full Perl grammar: a line that matches nothing becomes a
// raw-passthrough block, so parsing never fails and every input line is
// covered.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"questforge/internal/block"
	"questforge/internal/plugin"
	"questforge/internal/template"
	"questforge/internal/textutil"
)

// Literal recognizers for the generated-idiom subset. Checked in fixed
// priority order; the specific quest:: forms (settimer, persistent values)
// come before the generic quest:: call so they win.
var (
	reSubEvent  = regexp.MustCompile(`^sub\s+(EVENT_\w+)\s*\{`)
	reSubAny    = regexp.MustCompile(`^sub\s+(\w+)\s*\{`)
	reIf        = regexp.MustCompile(`^if\s*\((.+)\)\s*\{`)
	reElsif     = regexp.MustCompile(`^elsif\s*\((.+)\)\s*\{`)
	reElse      = regexp.MustCompile(`^else\s*\{`)
	reWhile     = regexp.MustCompile(`^while\s*\((.+)\)\s*\{`)
	reForeach   = regexp.MustCompile(`^foreach\s+my\s+(\$\w+)\s*\((.+)\)\s*\{$`)
	reSetTimer  = regexp.MustCompile(`^quest::settimer\(\s*"([^"]+)"\s*,\s*([0-9_]+)\s*\);`)
	reSetData   = regexp.MustCompile(`^quest::set_data\(\s*(.+?)\s*,\s*(.+)\);$`)
	reDelData   = regexp.MustCompile(`^quest::delete_data\(\s*(.+)\);$`)
	reQuest     = regexp.MustCompile(`^quest::(\w+)\((.*)\);`)
	reMultiDecl = regexp.MustCompile(`^(my|our)\s+([$@%]\w+)\s*=\s*\(\s*$`)
	reMy        = regexp.MustCompile(`^my\s+([$@%]\w+)\s*(?:=\s*(.+?))?;\s*(?:#.*)?$`)
	reOur       = regexp.MustCompile(`^our\s+([$@%]\w+)\s*(?:=\s*(.+?))?;\s*(?:#.*)?$`)
	reGetData   = regexp.MustCompile(`^(\$\w+)\s*=\s*quest::get_data\(\s*(.+)\);$`)
	reIndexed   = regexp.MustCompile(`^(\$\w+\s*\{\s*[^}]+\s*\})\s*=\s*(.+);$`)
	reSetVar    = regexp.MustCompile(`^(\$\w+)\s*=\s*(.+);`)
	reMethod    = regexp.MustCompile(`^(\$\w+)->(\w+)\((.*)\);`)
	reReturn    = regexp.MustCompile(`^return\b\s*(.*?);?$`)
	reNext      = regexp.MustCompile(`^next\b(.*);$`)
)

// Go's regexp has no backreferences, so the counted-for recognizer captures
// the loop variable at each position and the matches are compared in code.
var reFor = regexp.MustCompile(
	`^for\s*\(\s*my\s+(\$\w+)\s*=\s*([^;]+);\s*` + // init: my $i = START
		`(\$\w+)\s*(<=|<)\s*([^;]+);\s*` + // cond: $i < END or $i <= END
		`(\$\w+)\s*(\+\+|--|\+=\s*[^)]+|-=\s*[^)]+)\s*\)\s*\{`) // step

// Parse converts raw quest-script text into a block forest. The registry
// supplies plugin templates for recognizer fallback; it may be nil.
func Parse(text string, reg *plugin.Registry) []*block.Block {
	p := &parser{}
	if reg != nil {
		p.patterns = template.Compile(reg.List())
	}
	for _, line := range strings.Split(text, "\n") {
		p.consume(line)
	}
	p.flushComment()
	p.flushDecl()
	p.flushSub()
	return p.blocks
}

type parser struct {
	patterns []template.Pattern

	blocks []*block.Block
	stack  []*block.Block // open containers, innermost last

	comment []string

	// Multi-line my/our declaration being accumulated verbatim.
	declKind  string
	declVar   string
	declLines []string

	// Non-event subroutine being accumulated verbatim.
	subName  string
	subLines []string
	subDepth int
}

// add appends a block to the innermost open container, or to the root list.
func (p *parser) add(b *block.Block) {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		top.Children = append(top.Children, b)
		return
	}
	p.blocks = append(p.blocks, b)
}

func (p *parser) push(b *block.Block) {
	p.stack = append(p.stack, b)
}

func (p *parser) pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *parser) top() *block.Block {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) consume(line string) {
	stripped := strings.TrimSpace(line)

	// Inside a custom sub: append verbatim until braces balance.
	if p.subName != "" {
		p.subLines = append(p.subLines, line)
		p.subDepth += textutil.BraceDelta(line)
		if p.subDepth <= 0 {
			p.flushSub()
		}
		return
	}

	// Inside a multi-line declaration: append verbatim until ");".
	if p.declKind != "" {
		p.declLines = append(p.declLines, line)
		if strings.HasSuffix(stripped, ");") {
			p.flushDecl()
		}
		return
	}

	if stripped == "" {
		p.flushComment()
		return
	}

	if strings.HasPrefix(stripped, "#") {
		p.comment = append(p.comment, strings.TrimSpace(strings.TrimLeft(stripped, "#")))
		return
	}
	p.flushComment()

	// A lone closing delimiter ends the innermost open container.
	if strings.HasPrefix(stripped, "}") {
		p.pop()
		return
	}

	if m := reMultiDecl.FindStringSubmatch(stripped); m != nil {
		p.declKind = m[1]
		p.declVar = m[2]
		p.declLines = []string{line}
		if strings.HasSuffix(stripped, ");") {
			p.flushDecl()
		}
		return
	}

	if m := reSubEvent.FindStringSubmatch(stripped); m != nil {
		name := m[1]
		b := &block.Block{
			Kind:   block.KindEvent,
			Label:  name,
			Params: map[string]any{"event_name": name},
		}
		p.add(b)
		p.push(b)
		return
	}

	if m := reSubAny.FindStringSubmatch(stripped); m != nil && !strings.HasPrefix(m[1], "EVENT_") {
		p.subName = m[1]
		p.subLines = []string{line}
		p.subDepth = textutil.BraceDelta(line)
		if p.subDepth <= 0 {
			p.flushSub()
		}
		return
	}

	if m := reIf.FindStringSubmatch(stripped); m != nil {
		expr := strings.TrimSpace(m[1])
		b := &block.Block{
			Kind:   block.KindIf,
			Label:  fmt.Sprintf("if (%s)", expr),
			Params: map[string]any{"expr": expr},
		}
		p.add(b)
		p.push(b)
		return
	}

	// elsif/else close the preceding open branch and continue at the same
	// depth: they are siblings of the conditional, never its children.
	if m := reElsif.FindStringSubmatch(stripped); m != nil {
		expr := strings.TrimSpace(m[1])
		if t := p.top(); t != nil && (t.Kind == block.KindIf || t.Kind == block.KindElsif) {
			p.pop()
		}
		b := &block.Block{
			Kind:   block.KindElsif,
			Label:  fmt.Sprintf("elsif (%s)", expr),
			Params: map[string]any{"expr": expr},
		}
		p.add(b)
		p.push(b)
		return
	}

	if reElse.MatchString(stripped) {
		if t := p.top(); t != nil && (t.Kind == block.KindIf || t.Kind == block.KindElsif) {
			p.pop()
		}
		b := &block.Block{Kind: block.KindElse, Label: "else", Params: map[string]any{}}
		p.add(b)
		p.push(b)
		return
	}

	if m := reWhile.FindStringSubmatch(stripped); m != nil {
		expr := strings.TrimSpace(m[1])
		b := &block.Block{
			Kind:   block.KindWhile,
			Label:  fmt.Sprintf("while (%s)", expr),
			Params: map[string]any{"expr": expr},
		}
		p.add(b)
		p.push(b)
		return
	}

	if m := reForeach.FindStringSubmatch(stripped); m != nil {
		varName := strings.TrimSpace(m[1])
		listExpr := strings.TrimSpace(m[2])
		b := &block.Block{
			Kind:   block.KindForeach,
			Label:  fmt.Sprintf("foreach my %s (%s)", varName, listExpr),
			Params: map[string]any{"var_name": varName, "list_expr": listExpr},
		}
		p.add(b)
		p.push(b)
		return
	}

	if m := reFor.FindStringSubmatch(stripped); m != nil && m[1] == m[3] && m[1] == m[6] {
		varName := m[1]
		start := strings.TrimSpace(m[2])
		cmpOp := m[4]
		end := strings.TrimSpace(m[5])
		incExpr := strings.TrimSpace(m[7])
		b := &block.Block{
			Kind:  block.KindFor,
			Label: fmt.Sprintf("for (%s=%s..%s %s %s)", varName, start, end, cmpOp, incExpr),
			Params: map[string]any{
				"var_name": varName,
				"start":    intOrText(start),
				"end":      intOrText(end),
				"cmp_op":   cmpOp,
				"inc_expr": incExpr,
			},
		}
		p.add(b)
		p.push(b)
		return
	}

	if m := reSetTimer.FindStringSubmatch(stripped); m != nil {
		name := m[1]
		secs, err := strconv.Atoi(strings.ReplaceAll(m[2], "_", ""))
		if err != nil {
			secs = 10
		}
		p.add(&block.Block{
			Kind:   block.KindTimer,
			Label:  fmt.Sprintf("Set timer \"%s\" to %ds", name, secs),
			Params: map[string]any{"name": name, "seconds": secs},
		})
		return
	}

	if m := reSetData.FindStringSubmatch(stripped); m != nil {
		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		p.add(&block.Block{
			Kind:   block.KindSetBucket,
			Label:  fmt.Sprintf("Set bucket %s", key),
			Params: map[string]any{"key": key, "value": value},
		})
		return
	}

	if m := reDelData.FindStringSubmatch(stripped); m != nil {
		key := strings.TrimSpace(m[1])
		p.add(&block.Block{
			Kind:   block.KindDeleteBucket,
			Label:  fmt.Sprintf("Delete bucket %s", key),
			Params: map[string]any{"key": key},
		})
		return
	}

	if m := reQuest.FindStringSubmatch(stripped); m != nil {
		fn := strings.TrimSpace(m[1])
		args := strings.TrimSpace(m[2])
		p.add(&block.Block{
			Kind:   block.KindQuestCall,
			Label:  fmt.Sprintf("quest::%s(%s)", fn, args),
			Params: map[string]any{"quest_fn": fn, "args": args},
		})
		return
	}

	if m := reMy.FindStringSubmatch(stripped); m != nil {
		p.add(declBlock(block.KindMyVar, "my", m[1], m[2]))
		return
	}

	if m := reOur.FindStringSubmatch(stripped); m != nil {
		p.add(declBlock(block.KindOurVar, "our", m[1], m[2]))
		return
	}

	if m := reGetData.FindStringSubmatch(stripped); m != nil {
		varName := m[1]
		key := strings.TrimSpace(m[2])
		p.add(&block.Block{
			Kind:   block.KindGetBucket,
			Label:  fmt.Sprintf("Get bucket %s into %s", key, varName),
			Params: map[string]any{"key": key, "var_name": varName},
		})
		return
	}

	if m := reIndexed.FindStringSubmatch(stripped); m != nil {
		lhs := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		p.add(&block.Block{
			Kind:   block.KindArrayAssign,
			Label:  fmt.Sprintf("%s = %s", lhs, value),
			Params: map[string]any{"lhs": lhs, "value": value},
		})
		return
	}

	if m := reSetVar.FindStringSubmatch(stripped); m != nil {
		varName := m[1]
		value := strings.TrimSpace(m[2])
		p.add(&block.Block{
			Kind:   block.KindSetVar,
			Label:  fmt.Sprintf("Set %s = %s", varName, value),
			Params: map[string]any{"var_name": varName, "value": value},
		})
		return
	}

	if m := reMethod.FindStringSubmatch(stripped); m != nil {
		target, method := m[1], m[2]
		args := strings.TrimSpace(m[3])
		p.add(&block.Block{
			Kind:   block.KindMethod,
			Label:  fmt.Sprintf("%s->%s(%s)", target, method, args),
			Params: map[string]any{"target": target, "method": method, "args": args},
		})
		return
	}

	if m := reReturn.FindStringSubmatch(stripped); m != nil {
		val := strings.TrimSpace(m[1])
		label := "return"
		if val != "" {
			label = "return " + val
		}
		p.add(&block.Block{
			Kind:   block.KindReturn,
			Label:  label,
			Params: map[string]any{"value": val},
		})
		return
	}

	if m := reNext.FindStringSubmatch(stripped); m != nil {
		suffix := strings.TrimSpace(m[1])
		label := "next"
		if suffix != "" {
			label += " " + suffix
		}
		p.add(&block.Block{
			Kind:   block.KindNext,
			Label:  label,
			Params: map[string]any{"expr": suffix},
		})
		return
	}

	for _, pat := range p.patterns {
		if params, ok := pat.Match(stripped); ok {
			p.add(&block.Block{
				Kind:  block.KindPlugin,
				Label: fmt.Sprintf("Plugin: %s (%s)", pat.Def.Name, pat.Def.ID),
				Params: map[string]any{
					"plugin_id":     pat.Def.ID,
					"plugin_params": params,
				},
			})
			return
		}
	}

	// No recognizer claimed the line: keep it verbatim. Leading indentation
	// is dropped so the generator can re-indent it at the block's depth.
	p.add(&block.Block{
		Kind:   block.KindRawPerl,
		Label:  "Raw Perl",
		Params: map[string]any{"code": stripped},
	})
}

func (p *parser) flushComment() {
	if len(p.comment) == 0 {
		return
	}
	text := strings.Join(p.comment, "\n")
	first := strings.TrimSpace(p.comment[0])
	label := "# comment"
	if first != "" {
		label = "# " + textutil.Truncate(first, 37)
	}
	p.add(&block.Block{
		Kind:   block.KindComment,
		Label:  label,
		Params: map[string]any{"text": text},
	})
	p.comment = nil
}

// flushDecl emits an accumulated multi-line my/our declaration as one
// raw-passthrough block, preserving the span exactly.
func (p *parser) flushDecl() {
	if p.declKind == "" || len(p.declLines) == 0 {
		p.declKind, p.declVar, p.declLines = "", "", nil
		return
	}
	code := strings.TrimRight(strings.Join(p.declLines, "\n"), " \t\n")
	p.add(&block.Block{
		Kind:   block.KindRawPerl,
		Label:  fmt.Sprintf("Raw Perl (%s %s ...)", p.declKind, p.declVar),
		Params: map[string]any{"code": code},
	})
	p.declKind, p.declVar, p.declLines = "", "", nil
}

// flushSub emits an accumulated non-event subroutine as one
// raw-passthrough block.
func (p *parser) flushSub() {
	if p.subName == "" || len(p.subLines) == 0 {
		p.subName, p.subLines, p.subDepth = "", nil, 0
		return
	}
	code := strings.TrimRight(strings.Join(p.subLines, "\n"), " \t\n")
	p.add(&block.Block{
		Kind:   block.KindRawPerl,
		Label:  fmt.Sprintf("Raw Perl (sub %s)", p.subName),
		Params: map[string]any{"code": code},
	})
	p.subName, p.subLines, p.subDepth = "", nil, 0
}

func declBlock(kind block.Kind, keyword, varName, value string) *block.Block {
	value = strings.TrimSpace(value)
	params := map[string]any{"var_name": varName}
	label := fmt.Sprintf("%s %s", keyword, varName)
	if value != "" {
		params["value"] = value
		label += " = " + value
	}
	return &block.Block{Kind: kind, Label: label, Params: params}
}

// intOrText converts numeric-looking loop bounds to ints (underscore
// digit-group separators allowed) and leaves expressions as text.
func intOrText(s string) any {
	clean := strings.TrimSpace(strings.ReplaceAll(s, "_", ""))
	if n, err := strconv.Atoi(clean); err == nil {
		return n
	}
	return strings.TrimSpace(s)
}
