// Package schema exposes the embedded registry document JSON Schema and its
// declared version for runtime use.
package schema

import (
	_ "embed"
	"encoding/json"
	"sync"
)

type schemaDoc struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Canonical registry document schema embedded for metadata exposure.
//
//go:embed registry-document.schema.json
var registryDocumentSchema []byte

var (
	docOnce sync.Once
	docMeta schemaDoc
	docErr  error
)

func loadDoc() (schemaDoc, error) {
	docOnce.Do(func() {
		docErr = json.Unmarshal(registryDocumentSchema, &docMeta)
	})
	return docMeta, docErr
}

// DocumentSchemaVersion returns the schema version declared in the canonical
// registry document schema. It matches the version stamped into every
// persisted document's metadata block.
func DocumentSchemaVersion() (string, error) {
	doc, err := loadDoc()
	return doc.Version, err
}

// DocumentSchemaTitle returns the human-readable title of the document schema.
func DocumentSchemaTitle() (string, error) {
	doc, err := loadDoc()
	return doc.Title, err
}

// DocumentSchema returns the raw embedded JSON Schema bytes.
func DocumentSchema() []byte {
	out := make([]byte, len(registryDocumentSchema))
	copy(out, registryDocumentSchema)
	return out
}
