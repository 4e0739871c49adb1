package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCompiles(t *testing.T) {
	schema, err := compiledSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)
	assert.Contains(t, string(Schema()), "draft/2020-12")
}

func TestValidateBytes(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantPaths []string
	}{
		{
			name: "valid",
			data: `{"tasks":[{"id":1,"title":"a","priority":"low","status":"todo","tags":[],"due_date":null,"created":"x","updated":"x"}],"last_updated":"x"}`,
		},
		{
			name: "empty store",
			data: `{"tasks":[]}`,
		},
		{
			name:      "missing tasks",
			data:      `{}`,
			wantPaths: []string{""},
		},
		{
			name:      "bad priority",
			data:      `{"tasks":[{"id":1,"title":"a","priority":"urgent","status":"todo","created":"x","updated":"x"}]}`,
			wantPaths: []string{"tasks[0].priority"},
		},
		{
			name:      "bad id and due",
			data:      `{"tasks":[{"id":0,"title":"a","priority":"low","status":"todo","due_date":5,"created":"x","updated":"x"}]}`,
			wantPaths: []string{"tasks[0].id", "tasks[0].due_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateBytes([]byte(tt.data))
			var paths []string
			for _, err := range errs {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				paths = append(paths, ve.Path)
			}
			assert.ElementsMatch(t, tt.wantPaths, paths)
		})
	}
}

func TestStoreValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	data := `{
  "tasks": [
    {"id": 1, "title": "ok", "priority": "high", "status": "todo", "tags": [], "due_date": "someday",
     "created": "2025-01-01T00:00:00Z", "updated": "2025-01-01T00:00:00Z"},
    {"id": 1, "title": "dup", "priority": "low", "status": "done", "tags": [], "due_date": null,
     "created": "2025-01-02T00:00:00Z", "updated": "2025-01-01T00:00:00Z"}
  ],
  "last_updated": "2025-01-02T00:00:00Z"
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	result := Open(path, WithClock(stepClock(epoch))).Validate()
	assert.False(t, result.Valid)

	var msgs []string
	for _, err := range result.Errors {
		msgs = append(msgs, err.Error())
	}
	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, "tasks[1].id: duplicate id 1")
	assert.Contains(t, joined, "tasks[1].updated: earlier than created")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "tasks[0].due_date")
}

func TestStoreValidateClean(t *testing.T) {
	s := openTemp(t)
	_, err := s.Add("fine", PriorityHigh, []string{"x"}, "2025-03-01")
	require.NoError(t, err)

	result := s.Validate()
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}
