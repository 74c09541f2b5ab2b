package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"questforge/internal/block"
)

// BlockTemplate is a named, saved block subtree the user can re-insert
// into any script.
type BlockTemplate struct {
	ID   string       `json:"template_id"`
	Name string       `json:"name"`
	Root *block.Block `json:"root_block"`
}

type templateFile struct {
	Templates []BlockTemplate `json:"templates"`
}

// TemplateRegistry stores saved block templates, persisted as a JSON file.
type TemplateRegistry struct {
	path      string
	templates map[string]BlockTemplate
}

// NewTemplateRegistry creates a registry bound to the given file path.
func NewTemplateRegistry(path string) *TemplateRegistry {
	return &TemplateRegistry{path: path, templates: make(map[string]BlockTemplate)}
}

// Load reads the template file; a missing file leaves the registry empty.
func (r *TemplateRegistry) Load() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read templates: %w", err)
	}
	var f templateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode templates %s: %w", r.path, err)
	}
	r.templates = make(map[string]BlockTemplate, len(f.Templates))
	for _, t := range f.Templates {
		r.templates[t.ID] = t
	}
	return nil
}

// Save writes the registry back to its file.
func (r *TemplateRegistry) Save() error {
	if r.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(templateFile{Templates: r.List()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write templates: %w", err)
	}
	return nil
}

// Get looks up a template by id.
func (r *TemplateRegistry) Get(id string) (BlockTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Put stores a template under its id.
func (r *TemplateRegistry) Put(t BlockTemplate) {
	r.templates[t.ID] = t
}

// Delete removes a template, reporting whether it existed.
func (r *TemplateRegistry) Delete(id string) bool {
	if _, ok := r.templates[id]; !ok {
		return false
	}
	delete(r.templates, id)
	return true
}

// List returns all templates ordered case-insensitively by name.
func (r *TemplateRegistry) List() []BlockTemplate {
	out := make([]BlockTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

var slugRe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// SlugID derives a stable template id from a display name.
func SlugID(name string) string {
	return strings.ToLower(slugRe.ReplaceAllString(strings.TrimSpace(name), "_"))
}
