package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"time", "spikes", "fired", "unknown", "emitted", "alive", "newborn", "total"}

// Store keeps one directory per recorded run under baseDir.
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
	ID        string             `json:"id"`
	Dataset   string             `json:"dataset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Start     float64            `json:"start"`
	End       float64            `json:"end"`
	Policy    string             `json:"policy"`
	Prototype string             `json:"prototype"`
	Neurons   int                `json:"neurons"`
	Spikes    int                `json:"spikes"`
	Frames    int                `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(meta RunMetadata, frames []FrameRecord) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Dataset, now.UnixMilli())
	meta.Timestamp = now
	meta.Frames = len(frames)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		if err := w.Write(f.row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns the metadata of every run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		f, err := parseFrame(rec)
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (f FrameRecord) row() []string {
	return []string{
		strconv.FormatFloat(f.Time, 'f', 6, 64),
		strconv.Itoa(f.Spikes),
		strconv.Itoa(f.Fired),
		strconv.Itoa(f.Unknown),
		strconv.Itoa(f.Emitted),
		strconv.Itoa(f.Alive),
		strconv.Itoa(f.Newborn),
		strconv.Itoa(f.Total),
	}
}

func parseFrame(rec []string) (FrameRecord, error) {
	if len(rec) != len(frameHeader) {
		return FrameRecord{}, fmt.Errorf("expected %d fields, got %d", len(frameHeader), len(rec))
	}
	t, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return FrameRecord{}, err
	}
	ints := make([]int, len(rec)-1)
	for i, field := range rec[1:] {
		if ints[i], err = strconv.Atoi(field); err != nil {
			return FrameRecord{}, err
		}
	}
	return FrameRecord{
		Time:    t,
		Spikes:  ints[0],
		Fired:   ints[1],
		Unknown: ints[2],
		Emitted: ints[3],
		Alive:   ints[4],
		Newborn: ints[5],
		Total:   ints[6],
	}, nil
}
