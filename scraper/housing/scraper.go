package housing

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"housing-scraper/config"
	"housing-scraper/models"
	"housing-scraper/utils"
)

const baseURL = "https://housing.com/in/buy/%s?page=%d"

// Scraper drives the browser over the paginated buy listings, one location
// at a time, and feeds the harvested fragments to the Harvester. Pages are
// fetched strictly sequentially with a polite randomized delay between them.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	harvester *Harvester
	retry     *utils.RetryConfig
}

// New creates a ready-to-use housing Scraper.
func New(cfg *config.Config, harvester *Harvester, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		harvester: harvester,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape is the entry point that drives the per-location pagination loop.
// Whatever was accumulated is flushed before returning, error or not.
func (s *Scraper) Scrape() ([]*models.PropertyRecord, error) {
	defer s.harvester.Flush()

	s.logger.Info("[housing] Starting scrape — target: %d properties across %d locations",
		s.cfg.TargetProperties, len(s.cfg.Locations))

	chromeBin := findChromeBinary()
	s.logger.Info("[housing] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	for idx, location := range s.cfg.Locations {
		if s.harvester.Total() >= s.cfg.TargetProperties {
			break
		}

		city := CityFromSlug(location)
		s.logger.Info("[housing] Location %d/%d: %s", idx+1, len(s.cfg.Locations), city)

		if err := s.scrapeLocation(allocCtx, location, city); err != nil {
			// Browser-level failure: save what we have and bail out.
			return s.harvester.Records(), fmt.Errorf("location %s: %w", location, err)
		}
	}

	s.logger.Info("[housing] Scrape complete — total properties: %d", s.harvester.Total())
	return s.harvester.Records(), nil
}

// scrapeLocation pages through one location until the global target, the
// page budget, or the per-location cap is hit. An empty or timed-out page is
// "exhausted, keep going", never an error.
func (s *Scraper) scrapeLocation(allocCtx context.Context, location, city string) error {
	locationCount := 0

	for page := 1; page <= s.cfg.MaxPagesPerCity; page++ {
		if s.harvester.Total() >= s.cfg.TargetProperties || locationCount >= s.cfg.MaxPerCity {
			break
		}

		url := fmt.Sprintf(baseURL, location, page)
		s.logger.Info("[housing] Page %d — %s", page, url)

		var frags []models.Fragment
		err := s.retry.Do(fmt.Sprintf("fetch-page-%d", page), func() error {
			var ferr error
			frags, ferr = s.fetchFragments(allocCtx, url, page)
			return ferr
		})
		if err != nil {
			// Retries exhausted for this page; non-fatal, advance.
			s.logger.Warn("[housing] Page %d failed, skipping: %v", page, err)
			continue
		}

		if len(frags) == 0 {
			s.logger.Warn("[housing] No properties found on page %d. Moving to next page.", page)
			continue
		}

		accepted := s.harvester.ProcessPage(frags, city, page)
		locationCount += accepted
		s.logger.Info("[housing] Page %d done — %d accepted (%d from %s, %d total)",
			page, accepted, locationCount, city, s.harvester.Total())

		s.politeDelay()
	}

	return nil
}

// fetchFragments loads one results page and lifts every listing card's id
// and markup. A wait timeout means the page has no listings and yields an
// empty slice, not an error.
func (s *Scraper) fetchFragments(allocCtx context.Context, url string, page int) ([]models.Fragment, error) {
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
	defer cancelTimeout()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	// Cookie consent shows up on the first page only; ignore failures.
	if page == 1 {
		clickCtx, cancelClick := context.WithTimeout(ctx, 5*time.Second)
		if err := chromedp.Run(clickCtx,
			chromedp.Click(`[data-testid="cookie-consent-button"]`, chromedp.ByQuery),
		); err != nil {
			s.logger.Debug("[housing] No cookie consent found or not clickable")
		} else {
			s.logger.Info("[housing] Cookie consent handled")
		}
		cancelClick()
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, time.Duration(s.cfg.PageTimeoutSeconds)*time.Second)
	err := chromedp.Run(waitCtx,
		chromedp.WaitReady(`article[data-listingid]`, chromedp.ByQuery),
	)
	cancelWait()
	if err != nil {
		// Page exhausted — no cards rendered within the wait budget.
		return nil, nil
	}

	type cardData struct {
		ID   string `json:"id"`
		HTML string `json:"html"`
	}
	var cards []cardData

	if err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var out = [];
				var cards = document.querySelectorAll('article[data-listingid]');
				for (var i = 0; i < cards.length; i++) {
					out.push({
						id:   cards[i].getAttribute('data-listingid') || '',
						html: cards[i].outerHTML
					});
				}
				return out;
			})()
		`, &cards),
	); err != nil {
		return nil, fmt.Errorf("extract cards: %w", err)
	}

	s.logger.Debug("[housing] Found %d property articles on page %d", len(cards), page)

	frags := make([]models.Fragment, 0, len(cards))
	for _, c := range cards {
		frags = append(frags, models.Fragment{ListingID: c.ID, HTML: c.HTML})
	}
	return frags, nil
}

// politeDelay sleeps a randomized interval between page fetches. Courtesy
// rate limiting, not a correctness mechanism.
func (s *Scraper) politeDelay() {
	min, max := s.cfg.MinPageDelayMs, s.cfg.MaxPageDelayMs
	if max <= min {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(min+rand.Intn(max-min)) * time.Millisecond)
}

// CityFromSlug derives the display city name from a location slug:
// "greater_noida/greater_noida" → "Greater Noida".
func CityFromSlug(slug string) string {
	part := strings.SplitN(slug, "/", 2)[0]
	words := strings.Split(strings.ReplaceAll(part, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
