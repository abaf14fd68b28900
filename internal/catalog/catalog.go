// Package catalog scrapes a company's public services page into the short
// list of offered services that leads are rated against.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/config"
)

// NoServices is the single entry returned when a page has no matching items.
const NoServices = "No services found."

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxServices = 10
	defaultUserAgent   = "Mozilla/5.0 (compatible; LeadQualifier/1.0)"
)

// FetchError is a failed services scrape. Services converts it into a
// displayable entry instead of returning it.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog: fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Catalog fetches and filters service listings.
type Catalog struct {
	keywords    []string
	maxServices int
	timeout     time.Duration
	userAgent   string
	transport   http.RoundTripper
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTransport overrides the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Catalog) {
		c.transport = rt
	}
}

// New creates a Catalog from configuration.
func New(cfg config.CatalogConfig, opts ...Option) *Catalog {
	c := &Catalog{
		keywords:    lowerAll(cfg.Keywords),
		maxServices: cfg.MaxServices,
		timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
		userAgent:   cfg.UserAgent,
	}
	if len(c.keywords) == 0 {
		c.keywords = lowerAll(config.DefaultKeywords)
	}
	if c.maxServices <= 0 {
		c.maxServices = defaultMaxServices
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Services returns the offered services listed at url. It never fails: a
// fetch error becomes a single human-readable entry, so the result can always
// be shown and fed into a rating prompt.
func (c *Catalog) Services(ctx context.Context, url string) []string {
	services, err := c.Fetch(ctx, url)
	if err != nil {
		zap.L().Warn("catalog: services fetch failed, using error entry",
			zap.String("url", url),
			zap.Error(err),
		)
		return []string{"Error fetching services: " + err.Error()}
	}
	return services
}

// Fetch issues a single GET for url and extracts the matching services.
func (c *Catalog) Fetch(ctx context.Context, url string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	col := colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	col.SetRequestTimeout(c.timeout)
	// Error responses reach OnResponse so block pages can be classified.
	col.ParseHTTPErrorResponse = true
	if c.transport != nil {
		col.WithTransport(c.transport)
	}

	var (
		status int
		header http.Header
		body   []byte
	)
	col.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
		if r.Headers != nil {
			header = *r.Headers
		}
	})
	col.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := col.Visit(url); err != nil {
		return nil, &FetchError{URL: url, Status: status, Err: err}
	}

	if blocked, kind := DetectBlock(status, header, body); blocked {
		return nil, &FetchError{URL: url, Status: status, Err: eris.Errorf("blocked (%s)", kind)}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: url, Status: status, Err: eris.New(http.StatusText(status))}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: url, Status: status, Err: eris.Wrap(err, "parse html")}
	}

	services := Extract(doc.Selection, c.keywords, c.maxServices)

	zap.L().Debug("catalog: services fetched",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Int("services", len(services)),
	)

	return services, nil
}

// Extract collects the text of every list item under sel whose lowercase
// form contains at least one keyword, drops exact duplicates, and keeps the
// first limit entries in document order. Item text is whitespace-collapsed
// before comparison, so markup indentation does not produce two entries that
// read the same. An empty result is replaced by NoServices.
func Extract(sel *goquery.Selection, keywords []string, limit int) []string {
	var matched []string
	sel.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := strings.Join(strings.Fields(li.Text()), " ")
		if text == "" {
			return
		}
		lower := strings.ToLower(text)
		if lo.SomeBy(keywords, func(kw string) bool { return strings.Contains(lower, kw) }) {
			matched = append(matched, text)
		}
	})

	services := lo.Uniq(matched)
	if limit > 0 && len(services) > limit {
		services = services[:limit]
	}
	if len(services) == 0 {
		return []string{NoServices}
	}
	return services
}

func lowerAll(in []string) []string {
	return lo.FilterMap(in, func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		return s, s != ""
	})
}
