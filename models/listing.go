package models

import "strings"

// NotSpecified is stored in any optional field the page did not provide.
const NotSpecified = "Not specified"

// Listing is one job posting collected from the search results.
type Listing struct {
	Title       string
	Company     string
	Location    string
	URL         string
	Description string
}

// Key returns the dedup key for the listing.
func (l Listing) Key() string {
	return SeenKey(l.Title, l.Company, l.Location)
}

// SeenKey joins title, company and location with "|". Two postings that share
// all three collapse into one, even when their detail URLs differ.
func SeenKey(title, company, location string) string {
	return strings.Join([]string{title, company, location}, "|")
}

// PageResult describes what a single search results page yielded.
type PageResult struct {
	PageNumber int
	URL        string
	Markers    int
	Added      int
}
