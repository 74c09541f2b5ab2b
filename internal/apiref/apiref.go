// Package apiref loads the read-only reference data used to populate the
// editor palette: the Perl quest API method signatures and the known
// EVENT_* handler names. Nothing here feeds the transcoder.
package apiref

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// MethodDef is one API method signature from the reference file.
type MethodDef struct {
	Category string // e.g. "CLIENT"
	Var      string // receiver expression, e.g. "$client"
	Name     string // e.g. "Message"
	Args     string // e.g. "int32 type, std::string message"
}

var (
	catHeaderRe = regexp.MustCompile(`^\[(.+?) METHODS\]`)
	methodRe    = regexp.MustCompile(`^\$(\w+)->(\w+)\(([^)]*)\);`)
)

// LoadMethods parses a quest API reference file into methods grouped by
// category. A missing file yields an empty map, not an error.
func LoadMethods(path string) (map[string][]MethodDef, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string][]MethodDef{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open api reference: %w", err)
	}
	defer f.Close()
	return ParseMethods(f)
}

// ParseMethods reads reference text of the form
//
//	[CLIENT METHODS]
//	$client->Message(int32 type, std::string message);
//
// collecting method lines under the most recent category header.
func ParseMethods(r io.Reader) (map[string][]MethodDef, error) {
	methods := make(map[string][]MethodDef)
	currentCat := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := catHeaderRe.FindStringSubmatch(line); m != nil {
			currentCat = strings.ToUpper(strings.TrimSpace(m[1]))
			continue
		}
		if currentCat == "" {
			continue
		}
		if m := methodRe.FindStringSubmatch(line); m != nil {
			methods[currentCat] = append(methods[currentCat], MethodDef{
				Category: currentCat,
				Var:      "$" + m[1],
				Name:     m[2],
				Args:     strings.TrimSpace(m[3]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan api reference: %w", err)
	}
	return methods, nil
}
