package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// ValidationError describes one problem found in a config file.
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}

// Validator checks config files against the watch config JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a validator from the given schema file.
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateFile loads a YAML config file and validates it against the schema
// plus the semantic rules from Config.Validate.
func (v *Validator) ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []ValidationError{{
			File:    path,
			Message: fmt.Sprintf("failed to parse YAML: %v", err),
		}}
	}

	var errors []ValidationError
	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(path, validationErr)...)
		} else {
			errors = append(errors, ValidationError{File: path, Message: err.Error()})
		}
	}
	if len(errors) > 0 {
		return errors
	}

	// Schema-clean: apply the file and run the semantic checks.
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyFile(&f); err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}
	if err := cfg.Validate(); err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	return nil
}

// extractSchemaErrors converts JSON schema validation errors to
// ValidationErrors.
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errors = append(errors, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}

	return errors
}
