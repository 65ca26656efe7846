package query

import (
	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/storage/memory"
)

// Executor evaluates parsed queries against a store.
type Executor struct {
	store *memory.Store
}

// NewExecutor creates an executor bound to the given store.
func NewExecutor(store *memory.Store) *Executor {
	return &Executor{store: store}
}

// Execute runs a parsed query and returns the matched entries. A query
// with zero matches is not an error. When the action is delete, matched
// keys are removed from the live store while iteration proceeds over a
// stable snapshot taken at scan start, so a delete never skips entries.
//
// Comparisons between incompatible kinds are silent non-matches: a
// string key scanned against an integer query value simply contributes
// nothing to the result.
func (e *Executor) Execute(q ParsedQuery) []domain.Entry {
	// Key equality is a direct lookup, no scan.
	if q.Element == ElementKey && q.Operator == OpEq {
		value, ok := e.store.Get(q.Value)
		if !ok {
			return []domain.Entry{}
		}
		if q.Action == ActionDelete {
			e.store.Remove(q.Value)
		}
		return []domain.Entry{{Key: q.Value, Value: value}}
	}

	matches := []domain.Entry{}
	for _, entry := range e.store.SnapshotView() {
		operand := entry.Key
		if q.Element == ElementValue {
			operand = entry.Value
		}
		if !match(operand, q.Operator, q.Value) {
			continue
		}
		matches = append(matches, entry)
		if q.Action == ActionDelete {
			e.store.Remove(entry.Key)
		}
	}
	return matches
}

// match applies operator(operand, queryValue) with skip-not-error
// semantics for incompatible kinds.
func match(operand domain.Value, op Operator, queryValue domain.Value) bool {
	switch op {
	case OpEq:
		return operand.Equal(queryValue)
	case OpContains:
		return operand.Contains(queryValue)
	default:
		cmp, ok := operand.Compare(queryValue)
		if !ok {
			return false
		}
		switch op {
		case OpLt:
			return cmp < 0
		case OpGt:
			return cmp > 0
		case OpLe:
			return cmp <= 0
		case OpGe:
			return cmp >= 0
		}
		return false
	}
}
