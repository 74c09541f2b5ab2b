// Package codegen renders a block tree into EQEmu Perl quest-script text.
// Generation is deterministic and total: identical input always produces
// identical output, and problem blocks degrade to diagnostic comments
// instead of aborting.
package codegen

import (
	"fmt"
	"strings"

	"questforge/internal/block"
	"questforge/internal/plugin"
	"questforge/internal/template"
)

// Header is the fixed identification comment prepended by GenerateDocument.
const Header = "# Generated by questforge"

// Generate renders the block forest depth-first in input order, one or more
// lines per block, indented four spaces per nesting depth.
func Generate(blocks []*block.Block, reg *plugin.Registry) string {
	var g generator
	g.reg = reg
	for _, b := range blocks {
		g.render(b, 0)
	}
	return strings.Join(g.lines, "\n")
}

// GenerateDocument wraps Generate with the identification comment and, when
// npcID is positive, a numeric-identifier comment line.
func GenerateDocument(blocks []*block.Block, reg *plugin.Registry, npcID int) string {
	head := []string{Header}
	if npcID > 0 {
		head = append(head, fmt.Sprintf("# NPCID: %d", npcID))
	}
	head = append(head, "")
	return strings.Join(head, "\n") + "\n" + Generate(blocks, reg)
}

type generator struct {
	reg   *plugin.Registry
	lines []string
}

func (g *generator) emit(line string, indent int) {
	if line == "" {
		g.lines = append(g.lines, "")
		return
	}
	g.lines = append(g.lines, strings.Repeat(" ", 4*indent)+line)
}

func (g *generator) renderChildren(b *block.Block, indent int) {
	for _, c := range b.Children {
		g.render(c, indent)
	}
}

func (g *generator) render(b *block.Block, indent int) {
	switch b.Kind {
	case block.KindEvent:
		name := paramOr(b, "event_name", "EVENT_SAY")
		g.emit(fmt.Sprintf("sub %s {", name), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)
		g.emit("", indent)

	case block.KindIf:
		g.emit(fmt.Sprintf("if (%s) {", paramOr(b, "expr", "1")), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindElsif:
		g.emit(fmt.Sprintf("elsif (%s) {", paramOr(b, "expr", "1")), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindElse:
		g.emit("else {", indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindWhile:
		g.emit(fmt.Sprintf("while (%s) {", paramOr(b, "expr", "1")), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindFor:
		v := paramOr(b, "var_name", "$i")
		start := paramOr(b, "start", "0")
		end := paramOr(b, "end", "10")
		cmp := paramOr(b, "cmp_op", "<=")
		inc := paramOr(b, "inc_expr", "++")
		g.emit(fmt.Sprintf("for (my %s = %s; %s %s %s; %s%s) {", v, start, v, cmp, end, v, inc), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindForeach:
		v := paramOr(b, "var_name", "$x")
		list := paramOr(b, "list_expr", "@list")
		g.emit(fmt.Sprintf("foreach my %s (%s) {", v, list), indent)
		g.renderChildren(b, indent+1)
		g.emit("}", indent)

	case block.KindNext:
		if expr := strings.TrimSpace(b.StringParam("expr")); expr != "" {
			g.emit(fmt.Sprintf("next %s;", expr), indent)
		} else {
			g.emit("next;", indent)
		}

	case block.KindReturn:
		if val := strings.TrimSpace(b.StringParam("value")); val != "" {
			g.emit(fmt.Sprintf("return %s;", val), indent)
		} else {
			g.emit("return;", indent)
		}

	case block.KindComment:
		text := b.StringParam("text")
		if strings.TrimSpace(text) == "" {
			g.emit("#", indent)
			return
		}
		for _, ln := range splitLines(text) {
			g.emit("# "+ln, indent)
		}

	case block.KindMyVar:
		g.emitDecl(b, "my", "$myvar", indent)

	case block.KindOurVar:
		g.emitDecl(b, "our", "$OurVar", indent)

	case block.KindSetVar:
		g.emit(fmt.Sprintf("%s = %s;", paramOr(b, "var_name", "$myvar"), paramOr(b, "value", "0")), indent)

	case block.KindArrayAssign:
		g.emit(fmt.Sprintf("%s = %s;", paramOr(b, "lhs", "$hash{$key}"), paramOr(b, "value", "0")), indent)

	case block.KindSetBucket:
		key := paramOr(b, "key", `"my_bucket"`)
		val := paramOr(b, "value", `""`)
		g.emit(fmt.Sprintf("quest::set_data(%s, %s);", key, val), indent)

	case block.KindGetBucket:
		key := paramOr(b, "key", `"my_bucket"`)
		v := paramOr(b, "var_name", "$value")
		g.emit(fmt.Sprintf("%s = quest::get_data(%s);", v, key), indent)

	case block.KindDeleteBucket:
		g.emit(fmt.Sprintf("quest::delete_data(%s);", paramOr(b, "key", `"my_bucket"`)), indent)

	case block.KindTimer:
		name := paramOr(b, "name", "my_timer")
		secs, ok := b.IntParam("seconds")
		if !ok {
			secs = 10
		}
		g.emit(fmt.Sprintf("quest::settimer(\"%s\", %d);", name, secs), indent)

	case block.KindQuestCall:
		fn := paramOr(b, "quest_fn", "say")
		args := paramOr(b, "args", `"Hello, world!"`)
		g.emit(fmt.Sprintf("quest::%s(%s);", fn, args), indent)

	case block.KindMethod:
		target := paramOr(b, "target", "$client")
		method := paramOr(b, "method", "Message")
		g.emit(fmt.Sprintf("%s->%s(%s);", target, method, strings.TrimSpace(b.StringParam("args"))), indent)

	case block.KindPlugin:
		g.renderPlugin(b, indent)

	case block.KindRawPerl:
		for _, ln := range splitLines(b.StringParam("code")) {
			g.emit(ln, indent)
		}

	default:
		g.emit(fmt.Sprintf("# [Unknown block type: %s]", b.Kind), indent)
	}
}

// emitDecl renders a my/our declaration, stripping exactly one trailing
// semicolon from the supplied value before re-appending one so repeated
// generation never doubles it.
func (g *generator) emitDecl(b *block.Block, keyword, defaultVar string, indent int) {
	varName := paramOr(b, "var_name", defaultVar)
	value := strings.TrimRight(b.StringParam("value"), " \t\n")
	value = strings.TrimRight(strings.TrimSuffix(value, ";"), " \t\n")
	if strings.TrimSpace(value) != "" {
		g.emit(fmt.Sprintf("%s %s = %s;", keyword, varName, value), indent)
	} else {
		g.emit(fmt.Sprintf("%s %s;", keyword, varName), indent)
	}
}

func (g *generator) renderPlugin(b *block.Block, indent int) {
	pid := strings.TrimSpace(b.StringParam("plugin_id"))
	if pid == "" {
		return
	}
	var def plugin.Def
	ok := false
	if g.reg != nil {
		def, ok = g.reg.Get(pid)
	}
	if !ok {
		g.emit(fmt.Sprintf("# [Unknown plugin: %s]", pid), indent)
		return
	}

	params, _ := b.Params["plugin_params"].(map[string]any)
	code, err := template.Render(def.Template, params)
	if err != nil {
		g.emit(fmt.Sprintf("# [Plugin render failed: %v]", err), indent)
		return
	}
	for _, ln := range splitLines(code) {
		if strings.TrimSpace(ln) == "" {
			g.emit("", indent)
			continue
		}
		g.emit(ln, indent)
	}
}

// paramOr returns the named parameter stringified, or def when the
// parameter is absent, nil, or empty.
func paramOr(b *block.Block, key, def string) string {
	if s := b.StringParam(key); s != "" {
		return s
	}
	return def
}

// splitLines splits on newlines without manufacturing a trailing empty
// line for text that ends in one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
