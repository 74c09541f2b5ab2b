// Package plugin holds the JSON-backed catalogs the editor draws from: the
// plugin template registry and the saved block-template snippets.
package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Param describes one placeholder of a plugin template.
type Param struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Default any    `json:"default"`
}

// Def is a reusable parametrized snippet of Perl. Template may contain
// {name} placeholders; every placeholder needs a matching Param to render.
type Def struct {
	ID       string  `json:"id"`
	Name     string  `json:"display_name"`
	Category string  `json:"category"`
	Template string  `json:"template_text"`
	Params   []Param `json:"params"`
}

type catalogFile struct {
	Plugins []Def `json:"plugins"`
}

// Registry is the plugin catalog, persisted as a JSON file.
type Registry struct {
	path string
	defs map[string]Def
}

// NewRegistry creates an empty registry bound to the given file path. An
// empty path keeps the registry purely in memory.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, defs: make(map[string]Def)}
}

// Load reads the catalog file. A missing file seeds the registry with one
// example plugin so a fresh install has something to show, then saves it.
func (r *Registry) Load() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.seed()
		return r.Save()
	}
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode catalog %s: %w", r.path, err)
	}
	r.defs = make(map[string]Def, len(f.Plugins))
	for _, d := range f.Plugins {
		if d.Category == "" {
			d.Category = "General"
		}
		r.defs[d.ID] = d
	}
	log.Debug().Int("plugins", len(r.defs)).Str("path", r.path).Msg("Catalog loaded")
	return nil
}

// Save writes the catalog back to its file in List order.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(catalogFile{Plugins: r.List()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Get looks up a plugin definition by id.
func (r *Registry) Get(id string) (Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Put inserts or replaces a definition.
func (r *Registry) Put(d Def) {
	r.defs[d.ID] = d
}

// Delete removes a definition, reporting whether it existed.
func (r *Registry) Delete(id string) bool {
	if _, ok := r.defs[id]; !ok {
		return false
	}
	delete(r.defs, id)
	return true
}

// List returns all definitions ordered case-insensitively by display name.
// This is also the priority order for reverse-parse recognition.
func (r *Registry) List() []Def {
	out := make([]Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int { return len(r.defs) }

func (r *Registry) seed() {
	r.defs = map[string]Def{
		"say_to_client": {
			ID:       "say_to_client",
			Name:     "Say To Client",
			Category: "Chat",
			Template: `plugin::SayToClient($client, "{message}");`,
			Params: []Param{
				{Name: "message", Label: "Message", Kind: "str", Default: "Hello there!"},
			},
		},
	}
}
