package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/omwave/internal/sim"
)

type ExportData struct {
	Run        RunMetadata     `json:"run"`
	Times      []float64       `json:"times"`
	Phases     []float64       `json:"phases"`
	Wavefronts []sim.Positions `json:"wavefronts"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, phases, err := s.LoadDiagnostics(runID)
	if err != nil {
		return nil, err
	}
	fronts, err := s.LoadWavefronts(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Times: times, Phases: phases, Wavefronts: fronts}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
