// Package template renders plugin templates and compiles them into line
// recognizers for reverse parsing.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches {name} where name is a valid identifier. All other
// brace usage (Perl blocks, hash subscripts) is left untouched.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_]\w*)\}`)

// MissingParamError reports a placeholder with no supplied parameter.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing template param: %s", e.Name)
}

// Render substitutes every {name} placeholder with the stringified
// parameter value (nil renders as ""). Repeated placeholders are all
// substituted. Pure: the inputs are never modified.
func Render(tmpl string, params map[string]any) (string, error) {
	var sb strings.Builder
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(tmpl, -1) {
		name := tmpl[loc[2]:loc[3]]
		val, ok := params[name]
		if !ok {
			return "", &MissingParamError{Name: name}
		}
		sb.WriteString(tmpl[last:loc[0]])
		if val != nil {
			sb.WriteString(fmt.Sprint(val))
		}
		last = loc[1]
	}
	sb.WriteString(tmpl[last:])
	return sb.String(), nil
}

// Placeholders returns the distinct placeholder names in template order.
func Placeholders(tmpl string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
