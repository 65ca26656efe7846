package domain

import (
	"encoding/json"
	"fmt"
)

// Entry is a single (key, value) pair held by the store.
//
// On the wire and in snapshots an entry is a two-element JSON array
// [key, value], which keeps the response data field a plain array of
// pairs in any client language.
type Entry struct {
	Key   Value
	Value Value
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Value{e.Key, e.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []Value
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("domain: entry must be a [key, value] pair, got %d elements", len(pair))
	}
	e.Key = pair[0]
	e.Value = pair[1]
	return nil
}
