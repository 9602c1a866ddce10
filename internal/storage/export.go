package storage

import (
	"encoding/json"
	"errors"
	"io"
)

type ExportData struct {
	Metadata *RunMetadata `json:"metadata"`
	X        []float64    `json:"x"`
	Initial  []float64    `json:"initial"`
	Final    []float64    `json:"final"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, profile *Profile) error {
	data := ExportData{Metadata: meta}
	if profile != nil {
		data.X = profile.X
		data.Initial = profile.Initial
		data.Final = profile.Final
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes the profile columns x,initial,final.
func ExportCSV(w io.Writer, profile *Profile) error {
	if profile == nil {
		return errors.New("storage: nil profile")
	}
	return encodeProfile(w, *profile)
}
