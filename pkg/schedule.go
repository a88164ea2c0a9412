package pgmblur

import (
	"fmt"
	"runtime"
	"strings"
)

// Schedule is the policy used to split output rows between workers.
type Schedule int

const (
	// ScheduleDynamic lets every worker claim the next unprocessed row.
	ScheduleDynamic Schedule = iota
	// ScheduleStatic gives every worker one contiguous band of rows.
	ScheduleStatic
)

func (s Schedule) String() string {
	switch s {
	case ScheduleDynamic:
		return "dynamic"
	case ScheduleStatic:
		return "static"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dynamic":
		return ScheduleDynamic, nil
	case "static":
		return ScheduleStatic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSchedule, s)
	}
}

func resolveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

type rowBand struct {
	start, end int
}

// splitRows divides [0, rows) into at most workers contiguous bands of
// nearly equal size. Empty bands are never returned.
func splitRows(rows, workers int) []rowBand {
	if rows <= 0 {
		return nil
	}
	workers = min(resolveWorkers(workers), rows)
	chunk := (rows + workers - 1) / workers
	bands := make([]rowBand, 0, workers)
	for start := 0; start < rows; start += chunk {
		bands = append(bands, rowBand{start, min(start+chunk, rows)})
	}
	return bands
}
