package core

// Report is the result of one aggregation run. Count is the number of
// candidate records the run considered across all sources; Inserted and
// Skipped split that into newly persisted jobs and (title, company)
// duplicates. Err is set only for fatal conditions — an unreachable store
// or a failed identity resolution — never for per-source or per-record
// failures.
type Report struct {
	Success  bool   `json:"success"`
	Count    int    `json:"count"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Err      string `json:"error,omitempty"`
}

func failedReport(msg string) Report {
	return Report{Success: false, Err: msg}
}
