package roster

import (
	"fmt"
	"strings"
)

// RuleBook 按首次出现顺序保存规则，并保证同一 ID 只有一份正文。
type RuleBook struct {
	order []string
	byID  map[string]Rule
}

// NewRuleBook returns an empty rule book.
func NewRuleBook() *RuleBook {
	return &RuleBook{byID: map[string]Rule{}}
}

// ConflictError 表示同一规则 ID 出现了不同正文。
type ConflictError struct {
	ID    string
	First string
	Again string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("规则 %s 的正文前后不一致", e.ID)
}

// Add registers r. The first occurrence wins; a later occurrence with the same
// ID must carry the same text (whitespace-insensitive) or a *ConflictError is
// returned. A later occurrence may fill in an empty title.
func (b *RuleBook) Add(r Rule) error {
	if b.byID == nil {
		b.byID = map[string]Rule{}
	}
	existing, ok := b.byID[r.ID]
	if !ok {
		b.byID[r.ID] = r
		b.order = append(b.order, r.ID)
		return nil
	}
	if normalizeText(existing.Text) != normalizeText(r.Text) {
		return &ConflictError{ID: r.ID, First: existing.Text, Again: r.Text}
	}
	if existing.Title == "" && r.Title != "" {
		existing.Title = r.Title
		b.byID[r.ID] = existing
	}
	return nil
}

// Lookup returns the rule registered under id.
func (b *RuleBook) Lookup(id string) (Rule, bool) {
	if b == nil {
		return Rule{}, false
	}
	r, ok := b.byID[id]
	return r, ok
}

// All returns the rules in first-seen order.
func (b *RuleBook) All() []Rule {
	if b == nil {
		return nil
	}
	out := make([]Rule, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id])
	}
	return out
}

// Len returns the number of distinct rules.
func (b *RuleBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
