package script

import (
	"questforge/internal/block"
	"questforge/internal/textutil"
)

// History is an undo/redo stack over serialized block snapshots. The last
// undo entry is always the current state; consecutive identical snapshots
// are collapsed so no-op edits do not eat undo steps.
type History struct {
	undo []string
	redo []string
}

// Snapshot records the current tree as the newest state and clears the
// redo stack. Serialization failures are ignored: a snapshot that cannot
// be captured is simply skipped.
func (h *History) Snapshot(blocks []*block.Block) {
	data, err := block.Marshal(blocks)
	if err != nil {
		return
	}
	state := string(data)
	if len(h.undo) > 0 && textutil.Hash(h.undo[len(h.undo)-1]) == textutil.Hash(state) {
		return
	}
	h.undo = append(h.undo, state)
	h.redo = h.redo[:0]
}

// Undo steps back one snapshot, returning the tree to restore. ok is false
// when there is nothing earlier than the current state.
func (h *History) Undo() ([]*block.Block, bool) {
	if len(h.undo) < 2 {
		return nil, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, last)

	blocks, err := block.Unmarshal([]byte(h.undo[len(h.undo)-1]))
	if err != nil {
		return nil, false
	}
	return blocks, true
}

// Redo reapplies the most recently undone snapshot.
func (h *History) Redo() ([]*block.Block, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	state := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, state)

	blocks, err := block.Unmarshal([]byte(state))
	if err != nil {
		return nil, false
	}
	return blocks, true
}

// CanUndo reports whether a state earlier than the current one exists.
func (h *History) CanUndo() bool { return len(h.undo) > 1 }

// CanRedo reports whether an undone state can be reapplied.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
