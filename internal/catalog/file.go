package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadFile loads a snapshot from a YAML or JSON document of the form
//
//	disciplines:
//	  - {id: 1, code: ME, name: Mechanical}
//	document_types:
//	  - {id: 2, code: DRW, name: Drawing, name_en: Drawing}
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data)
}

// Decode parses a YAML or JSON catalog document. Unknown keys are rejected.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode catalog: %w", err)
	}
	return snap, nil
}
