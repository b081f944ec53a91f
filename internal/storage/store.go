package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

const (
	metadataFile    = "metadata.json"
	diagnosticsFile = "diagnostics.csv"
	wavefrontsFile  = "wavefronts.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a stored run. ID and Timestamp are filled by Save.
type RunMetadata struct {
	ID         string            `json:"id"`
	Preset     string            `json:"preset,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Medium     string            `json:"medium"`
	Integrator string            `json:"integrator"`
	PhaseUnit  string            `json:"phase_unit"`
	Parallel   bool              `json:"parallel"`
	Dt         float64           `json:"dt"`
	Steps      int               `json:"steps"`
	Wavefronts int               `json:"wavefronts"`
	Points     int               `json:"points"`
	Constants  physics.Constants `json:"constants"`
	Wavelength float64           `json:"wavelength_fm"`
	Speed      float64           `json:"speed_c"`
	FinalPhase float64           `json:"final_phase"`
	Elapsed    float64           `json:"elapsed"`
	Stopped    bool              `json:"stopped,omitempty"`
}

// Save writes a run directory holding metadata, the phase history and the
// final wavefront samples, and returns the new run ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.Timestamp = time.Now().UTC()
	meta.ID = fmt.Sprintf("%s_%d_%s", meta.Medium, meta.Timestamp.Unix(), uuid.NewString()[:8])
	meta.Steps = result.Clock.Steps
	meta.FinalPhase = result.Clock.PhaseDifference
	meta.Elapsed = result.Clock.Elapsed
	meta.Stopped = result.Stopped

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	if err := writeFile(filepath.Join(runDir, diagnosticsFile), func(w io.Writer) error {
		return WriteDiagnosticsCSV(w, result.Times, result.Phases)
	}); err != nil {
		return "", fmt.Errorf("write diagnostics: %w", err)
	}

	if err := writeFile(filepath.Join(runDir, wavefrontsFile), func(w io.Writer) error {
		return WriteWavefrontsCSV(w, result.Positions)
	}); err != nil {
		return "", fmt.Errorf("write wavefronts: %w", err)
	}

	return meta.ID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WriteDiagnosticsCSV writes one time,phase row per recorded step.
func WriteDiagnosticsCSV(w io.Writer, times, phases []float64) error {
	if len(times) != len(phases) {
		return fmt.Errorf("diagnostics length mismatch: %d times, %d phases", len(times), len(phases))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "phase"}); err != nil {
		return err
	}
	for i := range times {
		if err := cw.Write([]string{formatFloat(times[i]), formatFloat(phases[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWavefrontsCSV writes one row per sample: wavefront,sample,y,x.
func WriteWavefrontsCSV(w io.Writer, fronts []sim.Positions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"wavefront", "sample", "y", "x"}); err != nil {
		return err
	}
	for i, p := range fronts {
		for j := range p.Xs {
			row := []string{strconv.Itoa(i), strconv.Itoa(j), formatFloat(p.Ys[j]), formatFloat(p.Xs[j])}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs in %s", s.baseDir)
	}
	return &runs[0], nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", runID, name, err)
	}
	if len(records) > 0 {
		records = records[1:]
	}
	return records, nil
}

// LoadDiagnostics returns the recorded times and phase differences.
func (s *Store) LoadDiagnostics(runID string) (times, phases []float64, err error) {
	records, err := s.readCSV(runID, diagnosticsFile)
	if err != nil {
		return nil, nil, err
	}

	times = make([]float64, 0, len(records))
	phases = make([]float64, 0, len(records))
	for i, rec := range records {
		vals, err := parseFloats(rec)
		if err != nil || len(vals) != 2 {
			return nil, nil, fmt.Errorf("%s line %d: malformed row %v", diagnosticsFile, i+2, rec)
		}
		times = append(times, vals[0])
		phases = append(phases, vals[1])
	}
	return times, phases, nil
}

// LoadWavefronts returns the final wavefront samples, reference first.
func (s *Store) LoadWavefronts(runID string) ([]sim.Positions, error) {
	records, err := s.readCSV(runID, wavefrontsFile)
	if err != nil {
		return nil, err
	}

	fronts := make([]sim.Positions, 0)
	for i, rec := range records {
		if len(rec) != 4 {
			return nil, fmt.Errorf("%s line %d: expected 4 fields, got %d", wavefrontsFile, i+2, len(rec))
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil || idx < 0 || idx > len(fronts) {
			return nil, fmt.Errorf("%s line %d: bad wavefront index %q", wavefrontsFile, i+2, rec[0])
		}
		vals, err := parseFloats(rec[2:])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", wavefrontsFile, i+2, err)
		}
		if idx == len(fronts) {
			fronts = append(fronts, sim.Positions{})
		}
		fronts[idx].Ys = append(fronts[idx].Ys, vals[0])
		fronts[idx].Xs = append(fronts[idx].Xs, vals[1])
	}
	return fronts, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
