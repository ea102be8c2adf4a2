package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/particle"
)

const (
	metadataFile    = "metadata.json"
	pointsFile      = "points.csv"
	convergenceFile = "convergence.csv"
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

// SampleMetadata describes one stored sampling pass.
type SampleMetadata struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Capacity     int                `json:"capacity"`
	Count        int                `json:"count"`
	Lit          int                `json:"lit"`
	Needed       int                `json:"needed"`
	Truncated    bool               `json:"truncated"`
	Size         float64            `json:"size"`
	Density      float64            `json:"density"`
	ParticleSize float64            `json:"particle_size"`
	Extrusion    float64            `json:"extrusion"`
	Color        string             `json:"color"`
	FontFamily   string             `json:"font_family"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// NewMetadata fills metadata from a sampling pass.
func NewMetadata(text string, style glyph.Style, res glyph.Result, capacity int, seed int64) SampleMetadata {
	return SampleMetadata{
		Text:         text,
		Timestamp:    time.Now(),
		Seed:         seed,
		Capacity:     capacity,
		Count:        res.Count,
		Lit:          res.Lit,
		Needed:       res.Needed,
		Truncated:    res.Truncated,
		Size:         style.Size,
		Density:      style.Density,
		ParticleSize: style.ParticleSize,
		Extrusion:    style.Extrusion,
		Color:        style.Color.Hex(),
		FontFamily:   style.FontFamily,
	}
}

// PointRecord is one active target in points.csv.
type PointRecord struct {
	Index int     `csv:"index" json:"index"`
	X     float32 `csv:"x" json:"x"`
	Y     float32 `csv:"y" json:"y"`
	Z     float32 `csv:"z" json:"z"`
	R     float32 `csv:"r" json:"r"`
	G     float32 `csv:"g" json:"g"`
	B     float32 `csv:"b" json:"b"`
}

// ConvergenceRecord is one frame of convergence.csv.
type ConvergenceRecord struct {
	Frame       int     `csv:"frame"`
	Time        float64 `csv:"time"`
	Residual    float64 `csv:"residual"`
	MaxResidual float64 `csv:"max_residual"`
	RMSResidual float64 `csv:"rms_residual"`
	Jitter      float64 `csv:"jitter"`
	Parked      float64 `csv:"parked"`
}

// Points returns the active targets of buf.
func Points(buf *particle.TargetBuffer) []PointRecord {
	out := make([]PointRecord, 0, buf.Count)
	for i := 0; i < buf.Count; i++ {
		pos, col := buf.Target(i)
		out = append(out, PointRecord{
			Index: i,
			X:     pos[0], Y: pos[1], Z: pos[2],
			R: col[0], G: col[1], B: col[2],
		})
	}
	return out
}

func slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
		if b.Len() >= 24 {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "sample"
	}
	return s
}

// SaveSample writes metadata and the active points of buf into a new run
// directory and returns its ID.
func (s *Store) SaveSample(meta SampleMetadata, buf *particle.TargetBuffer) (string, error) {
	runID := fmt.Sprintf("%s_%d", slug(meta.Text), time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, pointsFile), Points(buf)); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveConvergence stores a convergence run next to a saved sample.
func (s *Store) SaveConvergence(runID string, samples []metrics.Sample) error {
	records := make([]ConvergenceRecord, 0, len(samples))
	for _, smp := range samples {
		records = append(records, ConvergenceRecord{
			Frame:       smp.Frame,
			Time:        smp.Time,
			Residual:    smp.Values["residual"],
			MaxResidual: smp.Values["max_residual"],
			RMSResidual: smp.Values["rms_residual"],
			Jitter:      smp.Values["jitter"],
			Parked:      smp.Values["parked"],
		})
	}
	return writeCSV(filepath.Join(s.baseDir, runID, convergenceFile), records)
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

func writeCSV[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// List returns stored samples, newest first.
func (s *Store) List() ([]SampleMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SampleMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]SampleMetadata, 0)
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

func (s *Store) Load(runID string) (*SampleMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SampleMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadPoints(runID string) ([]PointRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []PointRecord
	if err := gocsv.UnmarshalFile(f, &points); err != nil {
		return nil, fmt.Errorf("reading %s: %w", pointsFile, err)
	}
	return points, nil
}

func (s *Store) LoadConvergence(runID string) ([]ConvergenceRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, convergenceFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ConvergenceRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading %s: %w", convergenceFile, err)
	}
	return records, nil
}

// LoadTargets rebuilds a target buffer of the given capacity from a stored
// sample. Points beyond capacity are dropped; the rest of the buffer is
// parked at the origin column.
func (s *Store) LoadTargets(runID string, capacity int) (*particle.TargetBuffer, error) {
	points, err := s.LoadPoints(runID)
	if err != nil {
		return nil, err
	}
	buf := particle.NewTargetBuffer(capacity)
	n := min(len(points), buf.Capacity())
	for i := 0; i < n; i++ {
		p := points[i]
		buf.Set(i, p.X, p.Y, p.Z, p.R, p.G, p.B)
	}
	buf.Count = n
	return buf, nil
}
