package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	remoteOKEndpoint = "https://remoteok.io/api"
	remoteOKMaxJobs  = 20
)

// RemoteOK API returns a JSON array; the first element is metadata and has
// no position field.
type remoteOKEntry struct {
	Slug        string `json:"slug"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description"`
	Location    string `json:"location"`
	SalaryMin   int    `json:"salary_min"`
	SalaryMax   int    `json:"salary_max"`
}

type RemoteOKScraper struct {
	endpoint   string
	client     *http.Client
	normalizer Normalizer
}

func NewRemoteOKScraper(endpoint string) *RemoteOKScraper {
	if endpoint == "" {
		endpoint = remoteOKEndpoint
	}
	return &RemoteOKScraper{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
		normalizer: NewTextNormalizer(),
	}
}

func (r *RemoteOKScraper) Name() string { return "RemoteOK" }

func (r *RemoteOKScraper) Fetch(ctx context.Context) ([]JobRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok request failed: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remoteok status %d", resp.StatusCode)
	}

	var entries []remoteOKEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("remoteok decode failed: %w", err)
	}

	var jobs []JobRecord
	for _, e := range entries {
		if e.Position == "" {
			continue
		}
		if len(jobs) >= remoteOKMaxJobs {
			break
		}

		desc := r.normalizer.Normalize(e.Description)
		if desc == "" {
			desc = e.Position + " at " + e.Company
		}
		location := e.Location
		if location == "" {
			location = "Remote"
		}

		job := JobRecord{
			Title:           e.Position,
			Description:     desc,
			Location:        location,
			JobType:         JobTypeFullTime,
			Category:        "Technology",
			ExperienceLevel: ExperienceMid,
			Requirements:    []string{"Remote work", "Communication skills"},
			Source:          "RemoteOK",
		}
		if e.SalaryMin > 0 {
			job.Salary = &Salary{Min: e.SalaryMin, Max: e.SalaryMax, Currency: "USD"}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
