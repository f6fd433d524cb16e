package gantt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/harrisonrobin/gantta/pkg/model"
)

const schemaURL = "https://github.com/harrisonrobin/gantta/load-response.schema.json"

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidationError describes the first schema violation found in a document.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "load response: " + e.Message
	}
	return fmt.Sprintf("load response %s: %s", e.Path, e.Message)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks the marshalled document against the load-response schema.
func Validate(resp *model.LoadResponse) error {
	if resp == nil {
		return errors.New("load response is nil")
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal load response: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks raw JSON bytes against the load-response schema.
func ValidateJSON(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("unmarshal load response: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &ValidationError{
		Path:    pointerToPath(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath renders "/tasks/rows/0/name" as "tasks.rows[0].name".
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
