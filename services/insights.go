package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"indeed-scraper/models"
)

type CompanyCount struct {
	Company string
	Count   int
}

type Report struct {
	TotalListings      int
	UniqueCompanies    int
	WithDescription    int
	MissingCompany     int
	MissingLocation    int
	MissingDescription int
	ListingsByLocation map[string]int
	TopCompanies       []CompanyCount
}

// GenerateReport summarises a finished run.
func GenerateReport(listings []models.Listing) Report {
	report := Report{
		TotalListings:      len(listings),
		ListingsByLocation: make(map[string]int),
	}

	companies := make(map[string]int)
	for _, l := range listings {
		if l.Company == models.NotSpecified {
			report.MissingCompany++
		} else {
			companies[l.Company]++
		}

		if l.Location == models.NotSpecified {
			report.MissingLocation++
		}
		report.ListingsByLocation[l.Location]++

		if l.Description == models.NotSpecified {
			report.MissingDescription++
		} else {
			report.WithDescription++
		}
	}

	report.UniqueCompanies = len(companies)
	for name, n := range companies {
		report.TopCompanies = append(report.TopCompanies, CompanyCount{Company: name, Count: n})
	}
	sort.Slice(report.TopCompanies, func(i, j int) bool {
		if report.TopCompanies[i].Count == report.TopCompanies[j].Count {
			return report.TopCompanies[i].Company < report.TopCompanies[j].Company
		}
		return report.TopCompanies[i].Count > report.TopCompanies[j].Count
	})
	if len(report.TopCompanies) > 5 {
		report.TopCompanies = report.TopCompanies[:5]
	}

	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                        Job Search Summary                    │")
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Total Listings", report.TotalListings)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Unique Companies", report.UniqueCompanies)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "With Description", report.WithDescription)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Missing Company", report.MissingCompany)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Missing Location", report.MissingLocation)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Missing Description", report.MissingDescription)
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	if report.TotalListings == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Fprintln(w, "│ Listings per Location                        │ Count         │")
	fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
	for _, loc := range sortedKeys(report.ListingsByLocation) {
		fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(loc, 44), report.ListingsByLocation[loc])
	}
	fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")

	if len(report.TopCompanies) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌─────┬──────────────────────────────────────────────┬──────────┐")
	fmt.Fprintln(w, "│ #   │ Top Hiring Companies                         │ Listings │")
	fmt.Fprintln(w, "├─────┼──────────────────────────────────────────────┼──────────┤")
	for i, c := range report.TopCompanies {
		fmt.Fprintf(w, "│ %-3d │ %-44s │ %-8d │\n", i+1, truncateText(c.Company, 44), c.Count)
	}
	fmt.Fprintln(w, "└─────┴──────────────────────────────────────────────┴──────────┘")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
