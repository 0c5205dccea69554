package analysis

import (
	"sort"
	"strings"

	"github.com/san-kum/spikeviz/internal/spikes"
)

// RasterToASCII draws spikes in [start, end] with time on the horizontal axis
// and neurons, ordered by GID, on the vertical one. Several neurons share a
// row when there are more neurons than rows.
func RasterToASCII(seq spikes.Sequence, start, end float64, width, height int) string {
	if len(seq) == 0 || width <= 0 || height <= 0 || end <= start {
		return ""
	}

	ids := seq.GIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rowOf := make(map[uint32]int, len(ids))
	for i, id := range ids {
		rowOf[id] = i * height / len(ids)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	span := end - start
	lo, hi := seq.LowerBound(start), seq.UpperBound(end)
	for _, ev := range seq[lo:hi] {
		col := int((ev.Time - start) / span * float64(width))
		if col >= width {
			col = width - 1
		}
		canvas[rowOf[ev.GID]][col] = '│'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
