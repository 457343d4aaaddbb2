package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/storage"
)

type ExportData struct {
	Run     *storage.RunMetadata `json:"run"`
	Steps   int                  `json:"steps"`
	Samples []experiment.Sample  `json:"samples"`
}

// WriteJSON encodes a stored run and its samples.
func WriteJSON(w io.Writer, meta *storage.RunMetadata, samples []experiment.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Steps: len(samples), Samples: samples})
}

func ExportJSON(path string, meta *storage.RunMetadata, samples []experiment.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, meta, samples)
}
