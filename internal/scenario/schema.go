// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaName = "scenario.schema.json"

//go:embed scenario.schema.json
var schemaJSON []byte

var (
	// ErrSchemaValidation is returned when a document does not conform to the scenario schema.
	ErrSchemaValidation = errors.New("scenario does not match schema")

	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// SchemaJSON returns the embedded scenario schema document.
func SchemaJSON() []byte {
	return schemaJSON
}

// compileSchema compiles the embedded schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal scenario schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, doc); err != nil {
			compileErr = fmt.Errorf("add scenario schema resource: %w", err)
			return
		}

		compiledSchema, err = compiler.Compile(schemaName)
		if err != nil {
			compileErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateDocument checks a YAML scenario document against the embedded schema.
func ValidateDocument(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return errors.Join(ErrSchemaValidation, err)
	}

	return nil
}
