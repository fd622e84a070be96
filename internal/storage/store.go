package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/metrics"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	histogramFile = "histogram.csv"
)

// Store keeps run summaries, one directory per run. Only aggregates are
// written; particle state is never persisted.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Label           string             `json:"label"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            uint64             `json:"seed"`
	Dt              float64            `json:"dt"`
	Duration        float64            `json:"duration"`
	Particles       int                `json:"particles"`
	Species         string             `json:"species"`
	Assignment      string             `json:"assignment"`
	BroadPhase      string             `json:"broad_phase"`
	Boundary        string             `json:"boundary"`
	GasTemperature  float64            `json:"gas_temperature"`
	WallTemperature float64            `json:"wall_temperature"`
	ThermalExchange bool               `json:"thermal_exchange"`
	Reducer         float64            `json:"reducer"`
	Steps           int                `json:"steps"`
	Stats           dynamo.StepStats   `json:"stats"`
	Errors          int                `json:"errors"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes a run summary and returns its id. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result, hist []metrics.Bucket) (string, error) {
	if meta.Label == "" {
		meta.Label = "run"
	}
	meta.Timestamp = time.Now()
	meta.Steps = result.StepsTaken
	meta.Stats = result.Stats
	meta.Errors = len(result.Errors)
	meta.Metrics = result.Metrics

	runID, runDir, err := s.allocate(meta.Label, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writeHistogram(filepath.Join(runDir, histogramFile), hist); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) allocate(label string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", label, ts.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func seriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := seriesNames(result.Series)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{formatFloat(t)}
		for _, name := range names {
			vals := result.Series[name]
			if i < len(vals) {
				row = append(row, formatFloat(vals[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeHistogram(path string, hist []metrics.Bucket) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"lo", "hi", "count"}); err != nil {
		return err
	}
	for _, b := range hist {
		if err := w.Write([]string{formatFloat(b.Lo), formatFloat(b.Hi), strconv.Itoa(b.Count)}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries reads the sampled metric series of a run.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0)
	series := make(map[string][]float64)
	if len(records) < 1 {
		return times, series, nil
	}

	header := records[0]
	for _, name := range header[1:] {
		series[name] = make([]float64, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		for j := 1; j < len(header); j++ {
			v := 0.0
			if j < len(record) {
				if parsed, err := strconv.ParseFloat(record[j], 64); err == nil {
					v = parsed
				}
			}
			series[header[j]] = append(series[header[j]], v)
		}
	}
	return times, series, nil
}

// LoadHistogram reads the final speed histogram of a run.
func (s *Store) LoadHistogram(runID string) ([]metrics.Bucket, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, histogramFile))
	if err != nil {
		return nil, err
	}

	out := make([]metrics.Bucket, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < 3 {
			continue
		}
		lo, err1 := strconv.ParseFloat(record[0], 64)
		hi, err2 := strconv.ParseFloat(record[1], 64)
		n, err3 := strconv.Atoi(record[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return nil, fmt.Errorf("run %s histogram row %d: %w", runID, i, err)
		}
		out = append(out, metrics.Bucket{Lo: lo, Hi: hi, Count: n})
	}
	return out, nil
}
