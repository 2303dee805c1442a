package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Data Analyst  ", "Data Analyst"},
		{"collapses inner whitespace", "Data\n\t  Analyst", "Data Analyst"},
		{"non-breaking space", "Toronto,\u00a0ON", "Toronto, ON"},
		{"composes accents", "Montre\u0301al, QC", "Montr\u00e9al, QC"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
