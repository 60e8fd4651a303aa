package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configSchema describes the YAML config shape for `gitkarma config validate`.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "gitkarma configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "karma": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "url": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "commit": {"type": "string"},
        "author": {"type": "string"}
      }
    },
    "file": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "extension": {"type": "string", "pattern": "^\\."}
      }
    },
    "thresholds": {
      "type": "array",
      "items": {"type": "integer", "minimum": 1}
    },
    "workers": {"type": "integer", "minimum": 0},
    "skip": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "vendored": {"type": "boolean"}
      }
    },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["debug", "info", "warn", "error"]},
        "json": {"type": "boolean"}
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dir": {"type": "string"}
      }
    }
  }
}`

// ErrSchemaViolation indicates the config file does not match the schema.
var ErrSchemaViolation = errors.New("config does not match schema")

// SchemaIssue is one schema violation in a validated config file.
type SchemaIssue struct {
	Field       string
	Description string
}

// ValidateFile checks a YAML config file against the embedded schema.
// It returns the list of violations; a nil slice means the file is valid.
// I/O and schema errors are returned as errors, violations are not.
func ValidateFile(path string) ([]SchemaIssue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc any

	err = yaml.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	// An empty file is a valid all-defaults config.
	if doc == nil {
		doc = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]SchemaIssue, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, SchemaIssue{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return issues, nil
}
