// Package script persists the working script and tracks undo/redo
// snapshots of its block tree.
package script

import (
	"encoding/json"
	"fmt"
	"os"

	"questforge/internal/block"
)

// State is the persisted working script: the block forest plus the NPC id
// used for the generated document header. Window-layout concerns live with
// the GUI collaborator, not here.
type State struct {
	NPCID  int            `json:"npc_id,omitempty"`
	Blocks []*block.Block `json:"blocks"`
}

// Save writes the state file with stable indentation.
func Save(path string, st *State) error {
	if st.Blocks == nil {
		st.Blocks = []*block.Block{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode script state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write script state: %w", err)
	}
	return nil
}

// Load reads the state file. A missing file yields an empty state so a
// fresh install starts cleanly.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &State{Blocks: []*block.Block{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read script state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode script state %s: %w", path, err)
	}
	return &st, nil
}
