//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Mutation edits a request body already flattened to its JSON field map.
type Mutation func(map[string]any)

// DtoMap flattens v through its json tags and applies muts in order, so
// validation tests can break one field of an otherwise valid request.
func DtoMap(t *testing.T, v any, muts ...Mutation) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, mutate := range muts {
		mutate(fields)
	}
	return fields
}

// Field overwrites key. A nil value removes the key.
func Field(key string, value any) Mutation {
	return func(fields map[string]any) {
		if value == nil {
			delete(fields, key)
			return
		}
		fields[key] = value
	}
}
