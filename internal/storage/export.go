package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/thermobox/internal/metrics"
)

type ExportData struct {
	Run       RunMetadata          `json:"run"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Histogram []metrics.Bucket     `json:"histogram"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	hist, err := s.LoadHistogram(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Times: times, Series: series, Histogram: hist}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
