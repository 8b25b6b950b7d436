package core

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/jobportal/aggregator/internal/observability"
	"github.com/jobportal/aggregator/internal/scraper"
	"github.com/jobportal/aggregator/internal/store"
)

const defaultAdapterTimeout = 30 * time.Second

// Store is what the aggregator needs from the persistence layer.
type Store interface {
	IdentityStore
	Ping(ctx context.Context) error
	FindJobByTitleAndCompany(ctx context.Context, title string, company primitive.ObjectID) (*store.Job, error)
	InsertJob(ctx context.Context, job store.Job) error
}

// Aggregator runs one full aggregation pass: resolve the system identity,
// fan out to every source concurrently, then dedup-and-insert the merged
// candidates. Sources are best-effort; only store and identity failures
// abort a run.
type Aggregator struct {
	store    Store
	identity *IdentityResolver
	sources  []scraper.Source
	timeout  time.Duration
	running  atomic.Bool
}

func NewAggregator(s Store, sources []scraper.Source, adapterTimeout time.Duration) *Aggregator {
	if adapterTimeout <= 0 {
		adapterTimeout = defaultAdapterTimeout
	}
	return &Aggregator{
		store:    s,
		identity: NewIdentityResolver(s),
		sources:  sources,
		timeout:  adapterTimeout,
	}
}

func (a *Aggregator) Run(ctx context.Context) Report {
	// One run at a time; the scheduler and the manual trigger may collide.
	if !a.running.CompareAndSwap(false, true) {
		return failedReport("aggregation run already in progress")
	}
	defer a.running.Store(false)

	log.Printf("Aggregation: starting run with %d sources", len(a.sources))

	if err := a.store.Ping(ctx); err != nil {
		observability.IncError(observability.ErrorStore, "aggregator")
		return failedReport(fmt.Sprintf("store unreachable: %v", err))
	}

	companyID, err := a.identity.Resolve(ctx)
	if err != nil {
		observability.IncError(observability.ErrorStore, "identity")
		return failedReport(err.Error())
	}

	candidates := a.collect(ctx)
	log.Printf("Aggregation: processing %d candidates", len(candidates))

	report := Report{Success: true, Count: len(candidates)}
	for _, c := range candidates {
		existing, err := a.store.FindJobByTitleAndCompany(ctx, c.Title, companyID)
		if err != nil {
			log.Printf("Aggregation: duplicate check failed for %q: %v", c.Title, err)
			observability.IncError(observability.ErrorStore, "aggregator")
			continue
		}
		if existing != nil {
			report.Skipped++
			observability.IncJobSkipped()
			continue
		}
		if err := a.store.InsertJob(ctx, toStoreJob(c, companyID)); err != nil {
			log.Printf("Aggregation: failed to save %q: %v", c.Title, err)
			observability.IncError(observability.ErrorStore, "aggregator")
			continue
		}
		log.Printf("Aggregation: saved %q from %s", c.Title, c.Source)
		report.Inserted++
		observability.IncJobInserted()
	}

	observability.IncRunCompleted()
	log.Printf("Aggregation: run complete, considered=%d inserted=%d skipped=%d",
		report.Count, report.Inserted, report.Skipped)
	return report
}

// collect fans out to all sources and concatenates their output in source
// order. Each source gets its own deadline; a slow or broken source only
// zeroes its own contribution and never cancels siblings.
func (a *Aggregator) collect(ctx context.Context) []scraper.JobRecord {
	results := make([][]scraper.JobRecord, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			records, err := src.Fetch(fctx)
			if err != nil {
				log.Printf("Aggregation: %s failed: %v", src.Name(), err)
				observability.IncError(observability.ClassifyScrapeError(err), src.Name())
				return nil
			}
			observability.AddRecordsScraped(src.Name(), len(records))
			results[i] = records
			return nil
		})
	}
	_ = g.Wait()

	var candidates []scraper.JobRecord
	for _, batch := range results {
		candidates = append(candidates, batch...)
	}
	return candidates
}

func toStoreJob(c scraper.JobRecord, companyID primitive.ObjectID) store.Job {
	location := c.Location
	if location == "" {
		location = "Remote"
	}
	jobType := c.JobType
	if jobType == "" {
		jobType = scraper.JobTypeFullTime
	}
	return store.Job{
		Title:           c.Title,
		Description:     c.Description,
		Requirements:    c.Requirements,
		Location:        location,
		Salary:          c.Salary,
		JobType:         jobType,
		Category:        c.Category,
		Company:         companyID,
		Status:          "active",
		ExperienceLevel: c.ExperienceLevel,
		CompanyLogo:     c.CompanyLogo,
		Source:          c.Source,
	}
}
