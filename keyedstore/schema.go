package keyedstore

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed table_schema.json
var tableSchemaBytes []byte

var (
	tableSchema     *gojsonschema.Schema
	tableSchemaOnce sync.Once
	tableSchemaErr  error
)

func loadTableSchema() (*gojsonschema.Schema, error) {
	tableSchemaOnce.Do(func() {
		tableSchema, tableSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(tableSchemaBytes))
		if tableSchemaErr != nil {
			tableSchemaErr = fmt.Errorf("can't compile the embedded table schema: %w", tableSchemaErr)
		}
	})
	return tableSchema, tableSchemaErr
}

// validateDocument checks that doc is an array of [string, any] pairs. It
// returns a human readable reason when it is not.
func validateDocument(doc []byte) (string, error) {
	schema, err := loadTableSchema()
	if err != nil {
		return "", err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// gojsonschema fails here when doc is not JSON at all
		return fmt.Sprintf("not a JSON document: %v", err), nil
	}
	if result.Valid() {
		return "", nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; "), nil
}
