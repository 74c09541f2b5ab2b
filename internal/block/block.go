package block

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies what a block represents in the script tree. The set is
// closed: every operation over blocks switches on these constants.
type Kind string

const (
	KindEvent        Kind = "event"
	KindIf           Kind = "if"
	KindElsif        Kind = "elsif"
	KindElse         Kind = "else"
	KindWhile        Kind = "while"
	KindFor          Kind = "for"
	KindForeach      Kind = "foreach"
	KindNext         Kind = "next"
	KindReturn       Kind = "return"
	KindComment      Kind = "comment"
	KindMyVar        Kind = "my_var"
	KindOurVar       Kind = "our_var"
	KindSetVar       Kind = "set_var"
	KindArrayAssign  Kind = "array_assign"
	KindSetBucket    Kind = "set_bucket"
	KindGetBucket    Kind = "get_bucket"
	KindDeleteBucket Kind = "delete_bucket"
	KindTimer        Kind = "timer"
	KindPlugin       Kind = "plugin"
	KindRawPerl      Kind = "raw_perl"
	KindMethod       Kind = "method_call"
	KindQuestCall    Kind = "quest_call"
)

// Block is one node of a script's structural tree. Parameters are
// kind-specific; children are only rendered for container kinds.
type Block struct {
	Kind     Kind           `json:"kind"`
	Label    string         `json:"label"`
	Params   map[string]any `json:"params,omitempty"`
	Children []*Block       `json:"children,omitempty"`
}

// New creates an empty block of the given kind with its default label.
func New(kind Kind) *Block {
	return &Block{
		Kind:   kind,
		Label:  DefaultLabel(kind),
		Params: map[string]any{},
	}
}

// IsContainer reports whether children of the kind form a nested body.
func IsContainer(k Kind) bool {
	switch k {
	case KindEvent, KindIf, KindElsif, KindElse, KindWhile, KindFor, KindForeach:
		return true
	}
	return false
}

// StringParam returns the named parameter stringified ("" when absent or nil).
func (b *Block) StringParam(key string) string {
	v, ok := b.Params[key]
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return fmt.Sprint(v)
}

// IntParam returns the named parameter as an int. JSON decoding produces
// float64, so numeric coercion is deliberate; ok is false for anything that
// is not a whole number.
func (b *Block) IntParam(key string) (int, bool) {
	v, present := b.Params[key]
	if !present || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Walk visits every block in the forest depth-first, parents before children.
func Walk(blocks []*Block, fn func(*Block)) {
	for _, b := range blocks {
		fn(b)
		Walk(b.Children, fn)
	}
}

// Marshal serializes a block forest to the persistence / undo-snapshot
// format: a JSON array of nested {kind, label, params, children} records.
func Marshal(blocks []*Block) ([]byte, error) {
	if blocks == nil {
		blocks = []*Block{}
	}
	return json.Marshal(blocks)
}

// Unmarshal restores a block forest from its serialized form.
func Unmarshal(data []byte) ([]*Block, error) {
	var blocks []*Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return blocks, nil
}

// DefaultLabel returns the placeholder summary shown for a freshly created
// block before its parameters are edited.
func DefaultLabel(kind Kind) string {
	switch kind {
	case KindEvent:
		return "EVENT_SAY"
	case KindIf:
		return "if ( ... )"
	case KindElsif:
		return "elsif ( ... )"
	case KindElse:
		return "else"
	case KindWhile:
		return "while ( ... )"
	case KindFor:
		return "for (...)"
	case KindForeach:
		return "foreach my $x (@list)"
	case KindNext:
		return "next"
	case KindReturn:
		return "return"
	case KindComment:
		return "# comment"
	case KindMyVar:
		return "my $var = value"
	case KindOurVar:
		return "our $var = value"
	case KindSetVar:
		return "Set $var = value"
	case KindArrayAssign:
		return "$hash{$key} = value"
	case KindSetBucket:
		return "Set bucket"
	case KindGetBucket:
		return "Get bucket"
	case KindDeleteBucket:
		return "Delete bucket"
	case KindTimer:
		return "Set timer"
	case KindPlugin:
		return "Plugin call"
	case KindQuestCall:
		return "quest::say(...)"
	case KindRawPerl:
		return "Raw Perl"
	case KindMethod:
		return "Method call"
	}
	return string(kind)
}
