package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"indeed-scraper/models"
	"indeed-scraper/utils"
)

// Header is the fixed CSV column order.
var Header = []string{"job_title", "company", "location", "job_link", "job_description"}

// CSVWriter saves listings to a CSV file.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write replaces the file at the writer's path with a header row followed by
// one row per listing, and returns the number of listing rows written.
// The header is written even when listings is empty.
func (w *CSVWriter) Write(listings []models.Listing) (int, error) {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("could not create output dir: %w", err)
		}
	}

	file, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		return 0, fmt.Errorf("csv write error: %w", err)
	}

	for i, l := range listings {
		row := []string{l.Title, l.Company, l.Location, l.URL, l.Description}
		if err := writer.Write(row); err != nil {
			return i, fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("csv write error: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("could not close file: %w", err)
	}

	utils.Success("Saved %d jobs to %s", len(listings), w.path)
	return len(listings), nil
}
