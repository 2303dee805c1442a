package indeed

import (
	"fmt"
	"strings"
)

// SearchURL builds the results URL for the given start offset:
// {base}?q={query with spaces as +}&l={location}&start={offset}.
func SearchURL(base, query, location string, offset int) string {
	return fmt.Sprintf("%s?q=%s&l=%s&start=%d",
		base, strings.ReplaceAll(query, " ", "+"), location, offset)
}
