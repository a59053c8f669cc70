package eventlog

import (
	"encoding/json"
	"fmt"
)

// FieldChange is one field's before/after pair inside an audit payload.
type FieldChange struct {
	Old any
	New any
}

// ChangeSet maps a field name to the change recorded for it.
type ChangeSet map[string]FieldChange

// NewString returns the new value recorded for field, if it is a string.
func (c ChangeSet) NewString(field string) (string, bool) {
	fc, ok := c[field]
	if !ok {
		return "", false
	}
	s, ok := fc.New.(string)
	return s, ok
}

// rawDelta covers the payload shapes that have existed over the product's
// lifetime: {"old": x, "new": y} and the legacy {"from": x, "to": y}.
type rawDelta struct {
	Old  *json.RawMessage `json:"old"`
	New  *json.RawMessage `json:"new"`
	From *json.RawMessage `json:"from"`
	To   *json.RawMessage `json:"to"`
}

// ParsePayload attempts to decode an audit change payload into a ChangeSet.
// Payloads are opaque blobs owned by the audit subsystem and legacy entries may
// not decode at all, so a failed parse is reported as ok=false, never an error.
func ParsePayload(raw json.RawMessage) (ChangeSet, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	changes := make(ChangeSet, len(fields))
	for name, val := range fields {
		var delta rawDelta
		if err := json.Unmarshal(val, &delta); err == nil && (delta.Old != nil || delta.New != nil || delta.From != nil || delta.To != nil) {
			changes[name] = FieldChange{
				Old: decodeScalar(coalesce(delta.Old, delta.From)),
				New: decodeScalar(coalesce(delta.New, delta.To)),
			}
			continue
		}

		// Oldest format: the value itself is the new value.
		changes[name] = FieldChange{New: decodeScalar(&val)}
	}

	return changes, true
}

func coalesce(a, b *json.RawMessage) *json.RawMessage {
	if a != nil {
		return a
	}
	return b
}

func decodeScalar(raw *json.RawMessage) any {
	if raw == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(*raw, &v); err != nil {
		return fmt.Sprintf("%s", *raw)
	}
	return v
}
