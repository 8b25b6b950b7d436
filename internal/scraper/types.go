package scraper

import "context"

// Job type and experience level values accepted by the job store.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"

	ExperienceEntry  = "entry"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// Salary is present on a record only when the source exposes numeric
// compensation; adapters leave the pointer nil otherwise.
type Salary struct {
	Min      int    `json:"min" bson:"min"`
	Max      int    `json:"max" bson:"max"`
	Currency string `json:"currency" bson:"currency"`
}

// JobRecord is the intermediate shape every adapter maps its source into.
// Title is required; adapters drop source entries without one. Source is
// the provenance tag naming the adapter that produced the record.
type JobRecord struct {
	Title           string
	Description     string
	Location        string
	JobType         string
	Category        string
	ExperienceLevel string
	Salary          *Salary
	Requirements    []string
	CompanyLogo     string
	Source          string
}

// Source fetches one external job source and maps it to JobRecords. An
// error means the whole source was unavailable or unparseable; the caller
// treats that as zero records from this source, never as a run failure.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]JobRecord, error)
}

// Normalizer turns raw markup or free text into trimmed plain text.
type Normalizer interface {
	Normalize(content string) string
}
