package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jobportal/aggregator/internal/httpx"
)

const (
	craigslistSearchURL = "https://newyork.craigslist.org/search/sof"
	craigslistLocation  = "New York, NY"
	craigslistMaxRows   = 10
)

// Selector contract for Craigslist search result pages.
const (
	clRowSelector   = ".result-row"
	clTitleSelector = ".result-title"
	clPriceSelector = ".result-price"
)

type CraigslistScraper struct {
	searchURL string
	location  string
	fetcher   *httpx.Fetcher
}

func NewCraigslistScraper(searchURL, location string, fetcher *httpx.Fetcher) *CraigslistScraper {
	if searchURL == "" {
		searchURL = craigslistSearchURL
	}
	if location == "" {
		location = craigslistLocation
	}
	if fetcher == nil {
		fetcher = httpx.NewFetcher("")
	}
	return &CraigslistScraper{searchURL: searchURL, location: location, fetcher: fetcher}
}

func (c *CraigslistScraper) Name() string { return "Craigslist" }

func (c *CraigslistScraper) Fetch(ctx context.Context) ([]JobRecord, error) {
	body, _, err := c.fetcher.FetchBytes(ctx, c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("craigslist fetch failed: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("craigslist parse failed: %w", err)
	}

	var jobs []JobRecord
	doc.Find(clRowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= craigslistMaxRows {
			return false
		}
		title := tidyTitle(strings.TrimSpace(row.Find(clTitleSelector).Text()))
		link, _ := row.Find(clTitleSelector).Attr("href")
		price := strings.TrimSpace(row.Find(clPriceSelector).Text())
		if title == "" || link == "" {
			return true
		}

		job := JobRecord{
			Title:           title,
			Description:     fmt.Sprintf("Software job opportunity in %s - %s", c.location, title),
			Location:        c.location,
			JobType:         JobTypeFullTime,
			Category:        "Technology",
			ExperienceLevel: ExperienceMid,
			Requirements:    []string{"Software development"},
			Source:          "Craigslist",
		}
		if price != "" {
			job.Salary = &Salary{Min: 50000, Max: 100000, Currency: "USD"}
		}
		jobs = append(jobs, job)
		return true
	})
	return jobs, nil
}

var titleCaser = cases.Title(language.English)

// tidyTitle rewrites shouty all-caps listing titles; mixed-case titles
// pass through untouched.
func tidyTitle(s string) string {
	if s == "" || s == strings.ToLower(s) || s != strings.ToUpper(s) {
		return s
	}
	return titleCaser.String(strings.ToLower(s))
}
