package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// DefaultIgnoredFields are bookkeeping columns that change on every write.
var DefaultIgnoredFields = []string{"created_at", "updated_at"}

// Diff returns the top-level fields of after whose value differs from before,
// keyed by JSON field name and holding the post-mutation value. Fields removed
// in after are reported with a nil value. Nested values are compared as a
// whole, not recursed into.
func Diff(before, after any, ignore ...string) (map[string]any, error) {
	b, err := Snapshot(before)
	if err != nil {
		return nil, fmt.Errorf("snapshot before: %w", err)
	}
	a, err := Snapshot(after)
	if err != nil {
		return nil, fmt.Errorf("snapshot after: %w", err)
	}

	if ignore == nil {
		ignore = DefaultIgnoredFields
	}
	skip := make(map[string]struct{}, len(ignore))
	for _, f := range ignore {
		skip[f] = struct{}{}
	}

	changes := map[string]any{}
	for key, newVal := range a {
		if _, ok := skip[key]; ok {
			continue
		}
		oldVal, existed := b[key]
		if !existed || !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = newVal
		}
	}
	for key := range b {
		if _, ok := skip[key]; ok {
			continue
		}
		if _, still := a[key]; !still {
			changes[key] = nil
		}
	}
	return changes, nil
}

// Snapshot flattens v into its JSON object form.
func Snapshot(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("value is not a JSON object: %w", err)
	}
	return out, nil
}
