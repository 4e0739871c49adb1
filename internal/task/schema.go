package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskflow/internal/utils"
)

//go:embed taskflow.schema.json
var schemaSource []byte

const schemaURL = "https://taskflow.local/taskflow.schema.json"

// Schema returns the bundled JSON Schema for the task file.
func Schema() []byte {
	return bytes.Clone(schemaSource)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dot path to the error location, e.g. tasks[0].title
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results. Warnings do not make the
// result invalid.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}
}

func (r *ValidationResult) addError(path string, err error) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Path: path, Err: err})
}

// validateBytes checks raw task file contents against the schema and returns
// the violations found.
func validateBytes(data []byte) []error {
	result := newResult()
	validateSchema(result, data)
	return result.Errors
}

func validateSchema(result *ValidationResult, data []byte) {
	schema, err := compiledSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("schema unavailable: %v", err))
		return
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		result.addError("", fmt.Errorf("parse task file: %w", err))
		return
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			result.Valid = false
			result.Errors = append(result.Errors, err)
			return
		}
		collectSchemaErrors(result, ve)
	}
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.addError(utils.JSONPointerToPath(err.InstanceLocation), errors.New(err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// Validate checks the current tasks against the schema and the store
// invariants that the schema cannot express. Unparseable due dates are
// reported as warnings.
func (s *Store) Validate() *ValidationResult {
	result := newResult()

	data, err := Encode(Document{Tasks: s.Tasks(), LastUpdated: s.lastUpdated})
	if err != nil {
		result.addError("", err)
		return result
	}
	validateSchema(result, data)

	seen := make(map[int]int, len(s.tasks))
	for i, t := range s.tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		// Range, enum and empty-string checks are covered by the schema.
		if first, dup := seen[t.ID]; dup {
			result.addError(path+".id", fmt.Errorf("duplicate id %d (also tasks[%d])", t.ID, first))
		} else {
			seen[t.ID] = i
		}
		if t.Title != "" && strings.TrimSpace(t.Title) == "" {
			result.addError(path+".title", ErrEmptyTitle)
		}
		if t.Updated.Before(t.Created) {
			result.addError(path+".updated", errors.New("earlier than created"))
		}
		if CheckDue(t, s.now()) == DueInvalid {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.due_date: unrecognized date %q", path, t.Due()))
		}
	}

	return result
}
