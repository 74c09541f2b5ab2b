package block

import (
	"fmt"
	"strings"
)

// EnsureTimerHandler guarantees that a script setting the named timer also
// handles it: a trailing top-level EVENT_TIMER block containing an
// `if ($timer eq "name")` branch whose first statement stops the timer.
//
// When oldName is non-empty an existing branch for the old timer name is
// renamed instead of a new one being added. The returned slice is the
// updated top-level forest (EVENT_TIMER is forced to be the last handler).
func EnsureTimerHandler(blocks []*Block, timerName, oldName string) []*Block {
	timerName = strings.TrimSpace(timerName)
	if timerName == "" {
		return blocks
	}
	oldName = strings.TrimSpace(oldName)

	var handler *Block
	idx := -1
	for i, b := range blocks {
		if b.Kind == KindEvent && strings.TrimSpace(b.StringParam("event_name")) == "EVENT_TIMER" {
			handler = b
			idx = i
			break
		}
	}

	if handler == nil {
		handler = &Block{
			Kind:   KindEvent,
			Label:  "EVENT_TIMER",
			Params: map[string]any{"event_name": "EVENT_TIMER"},
		}
		blocks = append(blocks, handler)
	} else if idx != len(blocks)-1 {
		blocks = append(append(blocks[:idx:idx], blocks[idx+1:]...), handler)
	}

	wantExpr := timerExpr(timerName)

	// Exact branch already present: just make sure it stops the timer.
	for _, c := range handler.Children {
		if c.Kind == KindIf && strings.TrimSpace(c.StringParam("expr")) == wantExpr {
			ensureStopTimer(c, timerName)
			return blocks
		}
	}

	// Renaming: rewrite the old branch rather than adding a duplicate.
	if oldName != "" {
		oldExpr := timerExpr(oldName)
		for _, c := range handler.Children {
			if c.Kind == KindIf && strings.TrimSpace(c.StringParam("expr")) == oldExpr {
				c.Params["expr"] = wantExpr
				c.Label = fmt.Sprintf("if (%s)", wantExpr)
				ensureStopTimer(c, timerName)
				return blocks
			}
		}
	}

	branch := &Block{
		Kind:   KindIf,
		Label:  fmt.Sprintf("if (%s)", wantExpr),
		Params: map[string]any{"expr": wantExpr},
	}
	ensureStopTimer(branch, timerName)
	handler.Children = append(handler.Children, branch)
	return blocks
}

func timerExpr(name string) string {
	return fmt.Sprintf(`$timer eq "%s"`, name)
}

// ensureStopTimer updates an existing quest::stoptimer child or inserts one
// as the branch's first statement.
func ensureStopTimer(branch *Block, timerName string) {
	args := fmt.Sprintf("%q", timerName)
	for _, ch := range branch.Children {
		if ch.Kind == KindQuestCall && ch.StringParam("quest_fn") == "stoptimer" {
			ch.Params["args"] = args
			ch.Label = fmt.Sprintf("quest::stoptimer(%s)", args)
			return
		}
	}
	call := &Block{
		Kind:   KindQuestCall,
		Label:  fmt.Sprintf("quest::stoptimer(%s)", args),
		Params: map[string]any{"quest_fn": "stoptimer", "args": args},
	}
	branch.Children = append([]*Block{call}, branch.Children...)
}
