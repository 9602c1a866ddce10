package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/diffsim/internal/diffusion"
)

const (
	metadataFile  = "metadata.json"
	profileFile   = "profile.csv"
	snapshotsFile = "snapshots.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// ParamsRecord uses the same keys as the YAML config.
type ParamsRecord struct {
	D      float64 `json:"D"`
	Lx     float64 `json:"Lx"`
	Dx     float64 `json:"dx"`
	CLeft  float64 `json:"C_left"`
	CRight float64 `json:"C_right"`
	Nt     int     `json:"nt"`
	Dt     float64 `json:"dt"`
}

func (p ParamsRecord) Params() diffusion.Params {
	return diffusion.Params{D: p.D, Lx: p.Lx, Dx: p.Dx, CLeft: p.CLeft, CRight: p.CRight, Nt: p.Nt, Dt: p.Dt}
}

type RunMetadata struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Timestamp time.Time    `json:"timestamp"`
	Params    ParamsRecord `json:"params"`
	Boundary  string       `json:"boundary"`
	Points    int          `json:"points"`
	Steps     int          `json:"steps"`
	Time      float64      `json:"time"`
	ElapsedMs float64      `json:"elapsed_ms"`
	Snapshots int          `json:"snapshots"`
	Metrics   Metrics      `json:"metrics"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// Metrics encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf",
// which encoding/json cannot represent as numbers.
type Metrics map[string]float64

func (m Metrics) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = formatFloat(v)
		} else {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	out := make(Metrics, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case float64:
			out[k] = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("storage: metric %s: %w", k, err)
			}
			out[k] = f
		default:
			return fmt.Errorf("storage: metric %s: unexpected value %v", k, v)
		}
	}
	*m = out
	return nil
}

// Profile is the grid with the initial and final fields.
type Profile struct {
	X       []float64 `json:"x"`
	Initial []float64 `json:"initial"`
	Final   []float64 `json:"final"`
}

func NewRunID(name string) string {
	return fmt.Sprintf("%s_%s", sanitize(name), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Save writes the run under a new id. A failed save leaves no run directory.
func (s *Store) Save(name string, result *diffusion.Result) (string, error) {
	if result == nil {
		return "", errors.New("storage: nil result")
	}

	runID := NewRunID(name)
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, runID, name, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir, runID, name string, result *diffusion.Result) error {
	p := result.Params
	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		Params: ParamsRecord{
			D: p.D, Lx: p.Lx, Dx: p.Dx, CLeft: p.CLeft, CRight: p.CRight, Nt: p.Nt, Dt: result.Dt,
		},
		Boundary:  result.Boundary.String(),
		Points:    result.Grid.Len(),
		Steps:     result.Steps,
		Time:      result.Time,
		ElapsedMs: float64(result.Elapsed.Microseconds()) / 1000,
		Snapshots: len(result.Snapshots),
		Metrics:   Metrics(result.Metrics),
	}
	for _, w := range result.Warnings {
		meta.Warnings = append(meta.Warnings, w.Error())
	}
	if !result.Final.IsValid() {
		meta.Warnings = append(meta.Warnings, DivergedWarning)
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return err
	}

	profile := Profile{X: result.Grid.Points(), Initial: result.Initial, Final: result.Final}
	if err := writeFile(filepath.Join(runDir, profileFile), func(w io.Writer) error {
		return encodeProfile(w, profile)
	}); err != nil {
		return err
	}

	if len(result.Snapshots) > 0 {
		return writeFile(filepath.Join(runDir, snapshotsFile), func(w io.Writer) error {
			return encodeSnapshots(w, result.Snapshots)
		})
	}
	return nil
}

// DivergedWarning is recorded for runs whose final field is not finite.
const DivergedWarning = "final field contains NaN or Inf"

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeProfile(out io.Writer, p Profile) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"x", "initial", "final"}); err != nil {
		return err
	}
	for i := range p.X {
		row := []string{formatFloat(p.X[i]), formatFloat(p.Initial[i]), formatFloat(p.Final[i])}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func encodeSnapshots(out io.Writer, snaps []diffusion.Snapshot) error {
	w := csv.NewWriter(out)
	header := []string{"step", "time"}
	for i := range snaps[0].Field {
		header = append(header, fmt.Sprintf("c%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range snaps {
		row := make([]string, 0, len(snap.Field)+2)
		row = append(row, strconv.Itoa(snap.Step), formatFloat(snap.Time))
		for _, v := range snap.Field {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) open(runID, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return f, err
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	f, err := s.open(runID, metadataFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var meta RunMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadProfile(runID string) (*Profile, error) {
	f, err := s.open(runID, profileFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	p := &Profile{}
	for i := 1; i < len(records); i++ {
		vals, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", profileFile, i+1, err)
		}
		if len(vals) != 3 {
			return nil, fmt.Errorf("storage: %s line %d: want 3 columns, got %d", profileFile, i+1, len(vals))
		}
		p.X = append(p.X, vals[0])
		p.Initial = append(p.Initial, vals[1])
		p.Final = append(p.Final, vals[2])
	}
	return p, nil
}

// LoadSnapshots returns nil without error when the run recorded none.
func (s *Store) LoadSnapshots(runID string) ([]diffusion.Snapshot, error) {
	f, err := s.open(runID, snapshotsFile)
	if errors.Is(err, ErrRunNotFound) {
		if _, statErr := os.Stat(filepath.Join(s.baseDir, runID)); statErr == nil {
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	snaps := make([]diffusion.Snapshot, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 2 {
			continue
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", snapshotsFile, i+1, err)
		}
		vals, err := parseRow(rec[1:])
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", snapshotsFile, i+1, err)
		}
		snaps = append(snaps, diffusion.Snapshot{Step: step, Time: vals[0], Field: diffusion.Field(vals[1:])})
	}
	return snaps, nil
}

func parseRow(rec []string) ([]float64, error) {
	vals := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
