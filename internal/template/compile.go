package template

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"questforge/internal/plugin"
)

// Pattern pairs a plugin definition with the compiled recognizer for the
// line its template generates.
type Pattern struct {
	Def plugin.Def
	Re  *regexp.Regexp
}

// Match tests a line against the recognizer and, on success, returns the
// captured placeholder values keyed by parameter name.
func (p Pattern) Match(line string) (map[string]any, bool) {
	m := p.Re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	params := make(map[string]any)
	for i, name := range p.Re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return params, true
}

// Compile turns each catalog definition into a recognizer: literal text is
// quoted, each declared placeholder becomes a named capture, literal spaces
// accept flexible whitespace, and both line ends are anchored. Definitions
// that fail to compile are skipped; they stay usable for generation, so
// recognition is best-effort while generation stays total. Pattern order
// follows the input order (catalog order): first match wins.
func Compile(defs []plugin.Def) []Pattern {
	patterns := make([]Pattern, 0, len(defs))
	for _, def := range defs {
		expr := regexp.QuoteMeta(strings.TrimSpace(def.Template))
		for _, p := range def.Params {
			quoted := regexp.QuoteMeta("{" + p.Name + "}")
			expr = strings.ReplaceAll(expr, quoted, "(?P<"+p.Name+">.+?)")
		}
		expr = strings.ReplaceAll(expr, " ", `\s*`)

		re, err := regexp.Compile("^" + expr + "$")
		if err != nil {
			log.Debug().Err(err).Str("plugin", def.ID).Msg("Skipping unrecognizable template")
			continue
		}
		patterns = append(patterns, Pattern{Def: def, Re: re})
	}
	return patterns
}
