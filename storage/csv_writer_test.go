package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indeed-scraper/models"
	"indeed-scraper/utils"
)

func sampleListings() []models.Listing {
	return []models.Listing{
		{
			Title:       "Data Analyst Co-op",
			Company:     "Acme, Inc.",
			Location:    "Toronto, ON",
			URL:         "https://ca.indeed.com/viewjob?jk=1",
			Description: "Line one\nLine \"two\"",
		},
		{
			Title:       "ML Intern",
			Company:     models.NotSpecified,
			Location:    "Montréal, QC",
			URL:         "https://ca.indeed.com/viewjob?jk=2",
			Description: models.NotSpecified,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WritesHeaderAndRows(t *testing.T) {
	defer utils.SetOutput(&bytes.Buffer{})()
	path := filepath.Join(t.TempDir(), "out", "jobs.csv")

	n, err := NewCSVWriter(path).Write(sampleListings())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"job_title", "company", "location", "job_link", "job_description"}, rows[0])
	assert.Equal(t, []string{"Data Analyst Co-op", "Acme, Inc.", "Toronto, ON", "https://ca.indeed.com/viewjob?jk=1", "Line one\nLine \"two\""}, rows[1])
	assert.Equal(t, "Montréal, QC", rows[2][2])
}

func TestCSVWriter_EmptyWritesHeaderOnly(t *testing.T) {
	defer utils.SetOutput(&bytes.Buffer{})()
	path := filepath.Join(t.TempDir(), "jobs.csv")

	n, err := NewCSVWriter(path).Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "job_title,company,location,job_link,job_description\n", string(raw))
}

func TestCSVWriter_Overwrites(t *testing.T) {
	defer utils.SetOutput(&bytes.Buffer{})()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n1,2\n3,4\n5,6\n"), 0644))

	_, err := NewCSVWriter(path).Write(sampleListings()[:1])
	require.NoError(t, err)
	assert.Len(t, readCSV(t, path), 2)
}

func TestCSVWriter_SurfacesFilesystemErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCSVWriter(dir).Write(sampleListings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not create file")
}
