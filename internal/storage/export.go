package storage

import (
	"encoding/json"
	"io"
)

// ExportData bundles a stored sample into a single JSON document.
type ExportData struct {
	Meta   SampleMetadata `json:"meta"`
	Points []PointRecord  `json:"points"`
}

func ExportJSON(w io.Writer, meta SampleMetadata, points []PointRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Points: points})
}
