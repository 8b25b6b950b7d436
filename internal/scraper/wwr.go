package scraper

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jobportal/aggregator/internal/httpx"
)

const (
	wwrFeedURL  = "https://weworkremotely.com/categories/remote-programming-jobs.rss"
	wwrMaxItems = 10

	// Bound on concurrent detail-page fetches per feed run.
	wwrItemWorkers = 4
)

// Selector contract for WeWorkRemotely job detail pages.
const (
	wwrBodySelector = ".listing-body"
	wwrLogoSelector = ".listing-logo img"
)

type wwrFeed struct {
	Channel struct {
		Items []wwrItem `xml:"item"`
	} `xml:"channel"`
}

type wwrItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
}

type WWRScraper struct {
	feedURL    string
	client     *http.Client
	fetcher    *httpx.Fetcher
	workers    int
	normalizer Normalizer
}

func NewWWRScraper(feedURL string, fetcher *httpx.Fetcher) *WWRScraper {
	if feedURL == "" {
		feedURL = wwrFeedURL
	}
	if fetcher == nil {
		fetcher = httpx.NewFetcher("")
	}
	return &WWRScraper{
		feedURL:    feedURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		fetcher:    fetcher,
		workers:    wwrItemWorkers,
		normalizer: NewTextNormalizer(),
	}
}

func (w *WWRScraper) Name() string { return "WeWorkRemotely" }

func (w *WWRScraper) Fetch(ctx context.Context) ([]JobRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wwr request failed: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wwr feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wwr feed status %d", resp.StatusCode)
	}

	var feed wwrFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("wwr feed parse failed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > wwrMaxItems {
		items = items[:wwrMaxItems]
	}

	// Detail pages are fetched on a bounded pool; a failed item is skipped
	// without touching its siblings. Slots keep feed order for the merge.
	records := make([]*JobRecord, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			rec, err := w.scrapeItem(gctx, item)
			if err != nil {
				log.Printf("WWR: item %q skipped: %v", item.Title, err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	jobs := make([]JobRecord, 0, len(items))
	for _, rec := range records {
		if rec != nil {
			jobs = append(jobs, *rec)
		}
	}
	return jobs, nil
}

func (w *WWRScraper) scrapeItem(ctx context.Context, item wwrItem) (*JobRecord, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return nil, errors.New("missing title or link")
	}

	body, _, err := w.fetcher.FetchBytes(ctx, item.Link)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(doc.Find(wwrBodySelector).Text())
	if desc == "" {
		desc = item.Description
	}
	logo, _ := doc.Find(wwrLogoSelector).Attr("src")

	return &JobRecord{
		Title:           title,
		Description:     w.normalizer.Normalize(desc),
		Location:        "Remote",
		JobType:         JobTypeFullTime,
		Category:        "Technology",
		ExperienceLevel: ExperienceMid,
		Requirements:    []string{"Remote work"},
		CompanyLogo:     logo,
		Source:          "WeWorkRemotely",
	}, nil
}
