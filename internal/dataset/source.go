package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/goki/mat32"
	"github.com/san-kum/spikeviz/internal/spikes"
)

// cancelCheckEvery is how many records are read between context checks.
const cancelCheckEvery = 4096

// Source builds a complete dataset. Implementations add one to progress
// per record read and return ctx.Err() when canceled.
type Source interface {
	Name() string
	Load(ctx context.Context, progress *atomic.Int64) (*Dataset, error)
}

// CSVSource reads spikes from SpikesPath and optional positions from
// PositionsPath. Files ending in .csv are comma separated; anything else is
// split on whitespace. A non-numeric first line is treated as a header.
type CSVSource struct {
	SpikesPath    string
	PositionsPath string
}

func (s *CSVSource) Name() string { return filepath.Base(s.SpikesPath) }

func (s *CSVSource) Load(ctx context.Context, progress *atomic.Int64) (*Dataset, error) {
	if s.SpikesPath == "" {
		return nil, fmt.Errorf("csv source: %w", ErrMissingPath)
	}

	events, err := readSpikeFile(ctx, s.SpikesPath, progress)
	if err != nil {
		return nil, err
	}

	var positions map[uint32]mat32.Vec3
	if s.PositionsPath != "" {
		positions, err = readPositionFile(ctx, s.PositionsPath, progress)
		if err != nil {
			return nil, err
		}
	}

	return New(s.Name(), events, positions), nil
}

func readSpikeFile(ctx context.Context, path string, progress *atomic.Int64) ([]spikes.Event, error) {
	events := make([]spikes.Event, 0, 1024)
	err := readRecords(ctx, path, progress, func(line int, rec []string) error {
		if len(rec) < 2 {
			return fmt.Errorf("%s:%d: expected time,gid: %w", path, line, ErrMalformedRecord)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return fmt.Errorf("%s:%d: time %q: %w", path, line, rec[0], ErrMalformedRecord)
		}
		gid, err := strconv.ParseUint(rec[1], 10, 32)
		if err != nil {
			return fmt.Errorf("%s:%d: gid %q: %w", path, line, rec[1], ErrMalformedRecord)
		}
		events = append(events, spikes.Event{Time: t, GID: uint32(gid)})
		return nil
	})
	return events, err
}

func readPositionFile(ctx context.Context, path string, progress *atomic.Int64) (map[uint32]mat32.Vec3, error) {
	positions := make(map[uint32]mat32.Vec3)
	err := readRecords(ctx, path, progress, func(line int, rec []string) error {
		if len(rec) < 4 {
			return fmt.Errorf("%s:%d: expected gid,x,y,z: %w", path, line, ErrMalformedRecord)
		}
		gid, err := strconv.ParseUint(rec[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%s:%d: gid %q: %w", path, line, rec[0], ErrMalformedRecord)
		}
		var xyz [3]float32
		for i := range xyz {
			v, err := strconv.ParseFloat(rec[i+1], 32)
			if err != nil {
				return fmt.Errorf("%s:%d: coordinate %q: %w", path, line, rec[i+1], ErrMalformedRecord)
			}
			xyz[i] = float32(v)
		}
		positions[uint32(gid)] = mat32.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		return nil
	})
	return positions, err
}

func readRecords(ctx context.Context, path string, progress *atomic.Int64, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var next func() ([]string, error)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		next = commaReader(f)
	} else {
		next = whitespaceReader(f)
	}

	for line := 1; ; line++ {
		if line%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec, err := next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if len(rec) == 0 || strings.HasPrefix(rec[0], "#") {
			continue
		}
		if line == 1 && !isNumeric(rec[0]) {
			continue
		}

		if err := fn(line, rec); err != nil {
			return err
		}
		if progress != nil {
			progress.Add(1)
		}
	}
}

func commaReader(r io.Reader) func() ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return cr.Read
}

func whitespaceReader(r io.Reader) func() ([]string, error) {
	sc := bufio.NewScanner(r)
	return func() ([]string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return strings.Fields(sc.Text()), nil
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
