package indeed

// CSS selectors for Indeed search results and job pages.
const (
	// Search results page
	MarkerSelector   = `div.job_seen_beacon`
	TitleSelector    = `h2.jobTitle span`
	CompanySelector  = `span[data-testid='company-name']`
	LocationSelector = `div[data-testid='text-location']`
	LinkSelector     = `a`

	// Detail page
	DescriptionSelector = `#jobDescriptionText`
)
