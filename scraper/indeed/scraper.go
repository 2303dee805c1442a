package indeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"indeed-scraper/browser"
	"indeed-scraper/config"
	"indeed-scraper/models"
	"indeed-scraper/utils"
)

var errMissingTitle = errors.New("listing has no title")

// Scraper walks Indeed search result pages in a single tab and opens each new
// listing in a second tab for its description. It is not safe for concurrent use.
type Scraper struct {
	cfg  *config.Config
	page browser.Page
	seen map[string]struct{}
}

func NewScraper(cfg *config.Config, page browser.Page) *Scraper {
	return &Scraper{
		cfg:  cfg,
		page: page,
		seen: make(map[string]struct{}),
	}
}

// Collect visits up to MaxPages result pages and returns the unique listings
// in the order they were found. Running out of results ends the walk without
// error. On a fatal error the listings gathered so far are returned with it.
func (s *Scraper) Collect(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing

	for pageIndex := 0; pageIndex < s.cfg.MaxPages; pageIndex++ {
		result, pageListings, done, err := s.scrapePage(ctx, pageIndex)
		listings = append(listings, pageListings...)
		if err != nil {
			return listings, err
		}
		if done {
			break
		}
		utils.Info("Page %d: %d cards, %d new listings", result.PageNumber, result.Markers, result.Added)

		if err := utils.Pause(ctx, s.cfg.PageDelay); err != nil {
			return listings, err
		}
	}

	utils.Success("Collected %d unique listings", len(listings))
	return listings, nil
}

// scrapePage handles one results page. done reports that there are no more pages.
func (s *Scraper) scrapePage(ctx context.Context, pageIndex int) (models.PageResult, []models.Listing, bool, error) {
	result := models.PageResult{
		PageNumber: pageIndex + 1,
		URL:        SearchURL(s.cfg.BaseURL, s.cfg.Query, s.cfg.Location, pageIndex*s.cfg.PageSize),
	}
	utils.Info("Fetching page %d", result.PageNumber)

	if err := s.page.Load(ctx, result.URL); err != nil {
		return result, nil, true, fmt.Errorf("load page %d: %w", result.PageNumber, err)
	}

	if err := s.page.WaitFor(ctx, MarkerSelector, s.cfg.PageTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			utils.Info("No more pages")
			return result, nil, true, nil
		}
		return result, nil, true, fmt.Errorf("wait for results on page %d: %w", result.PageNumber, err)
	}

	markers, err := s.page.FindAll(ctx, MarkerSelector)
	if err != nil {
		return result, nil, true, fmt.Errorf("list job cards on page %d: %w", result.PageNumber, err)
	}
	result.Markers = len(markers)
	utils.Info("Found %d job cards", len(markers))
	if len(markers) == 0 {
		return result, nil, true, nil
	}

	var listings []models.Listing
	for _, marker := range markers {
		listing, ok, err := s.scrapeMarker(ctx, marker)
		if err != nil {
			if errors.Is(err, browser.ErrStale) {
				utils.Warn("Stale element, skipping job")
			} else {
				utils.Warn("Skipping job due to error: %v", err)
			}
			continue
		}
		if ok {
			listings = append(listings, listing)
		}
	}

	result.Added = len(listings)
	return result, listings, false, nil
}

// scrapeMarker turns one job card into a listing. ok is false when the card
// repeats a listing already collected in this run.
func (s *Scraper) scrapeMarker(ctx context.Context, marker browser.Element) (models.Listing, bool, error) {
	title, err := s.text(ctx, marker, TitleSelector)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return models.Listing{}, false, errMissingTitle
		}
		return models.Listing{}, false, fmt.Errorf("title: %w", err)
	}
	// A blank title counts as missing.
	if title == "" {
		return models.Listing{}, false, errMissingTitle
	}

	company, err := s.optionalText(ctx, marker, CompanySelector)
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("company: %w", err)
	}
	location, err := s.optionalText(ctx, marker, LocationSelector)
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("location: %w", err)
	}

	link, err := marker.Find(ctx, LinkSelector)
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("job link: %w", err)
	}
	href, err := link.Attr(ctx, "href")
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("job link href: %w", err)
	}

	key := models.SeenKey(title, company, location)
	if _, dup := s.seen[key]; dup {
		return models.Listing{}, false, nil
	}
	s.seen[key] = struct{}{}

	description, err := s.description(ctx, href)
	if err != nil {
		return models.Listing{}, false, err
	}

	return models.Listing{
		Title:       title,
		Company:     company,
		Location:    location,
		URL:         href,
		Description: description,
	}, true, nil
}

// description opens href in a new tab and reads the job description. The tab
// is always closed before returning so at most one extra tab is ever open.
func (s *Scraper) description(ctx context.Context, href string) (string, error) {
	tab, err := s.page.OpenTab(ctx, href)
	if err != nil {
		return "", fmt.Errorf("open job detail: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			utils.Warn("Could not close job tab: %v", err)
		}
	}()

	if err := tab.WaitFor(ctx, DescriptionSelector, s.cfg.PageTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return models.NotSpecified, nil
		}
		return "", fmt.Errorf("wait for description: %w", err)
	}

	el, err := tab.FindOne(ctx, DescriptionSelector)
	if err != nil {
		return "", fmt.Errorf("description: %w", err)
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("description text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Scraper) text(ctx context.Context, parent browser.Element, selector string) (string, error) {
	el, err := parent.Find(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return utils.CleanText(text), nil
}

// optionalText returns NotSpecified when the field is absent. A field that is
// present but blank is treated as absent too.
func (s *Scraper) optionalText(ctx context.Context, parent browser.Element, selector string) (string, error) {
	text, err := s.text(ctx, parent, selector)
	if errors.Is(err, browser.ErrNotFound) || (err == nil && strings.TrimSpace(text) == "") {
		return models.NotSpecified, nil
	}
	return text, err
}
