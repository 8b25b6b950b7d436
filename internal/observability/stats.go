package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	RunsCompleted     uint64            `json:"runs_completed"`
	RecordsScraped    uint64            `json:"records_scraped"`
	JobsInserted      uint64            `json:"jobs_inserted"`
	JobsSkipped       uint64            `json:"jobs_skipped"`
	ErrorsTotal       uint64            `json:"errors_total"`
	RecordsBySource   map[string]uint64 `json:"records_by_source,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	runsCompleted  uint64
	recordsScraped uint64
	jobsInserted   uint64
	jobsSkipped    uint64
	errorsTotal    uint64

	statsMu           sync.Mutex
	recordsBySource   = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncRunCompleted() {
	atomic.AddUint64(&runsCompleted, 1)
}

func AddRecordsScraped(source string, n int) {
	if n <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	atomic.AddUint64(&recordsScraped, uint64(n))
	statsMu.Lock()
	recordsBySource[source] += uint64(n)
	statsMu.Unlock()
}

func IncJobInserted() {
	atomic.AddUint64(&jobsInserted, 1)
}

func IncJobSkipped() {
	atomic.AddUint64(&jobsSkipped, 1)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	sourceCopy := copyMap(recordsBySource)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	return StatsSnapshot{
		RunsCompleted:     atomic.LoadUint64(&runsCompleted),
		RecordsScraped:    atomic.LoadUint64(&recordsScraped),
		JobsInserted:      atomic.LoadUint64(&jobsInserted),
		JobsSkipped:       atomic.LoadUint64(&jobsSkipped),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		RecordsBySource:   sourceCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
