// Package qualify runs the whole lead qualification flow for one uploaded
// table: normalize, fetch the service catalog, rate every lead.
package qualify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/catalog"
	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/lead"
	"github.com/sells-group/lead-qualifier/internal/rating"
	"github.com/sells-group/lead-qualifier/internal/sheet"
)

// MissingKeyNotice is shown in place of ratings when no API key was given.
const MissingKeyNotice = "Enter an API key to rate leads."

// Request selects the provider and key for a run. The key is used for the
// outbound rating requests only.
type Request struct {
	Provider string
	APIKey   string
}

// Report is the outcome of a run. Results is nil when rating was skipped,
// in which case Notice says why.
type Report struct {
	RunID    string          `json:"run_id"`
	Company  string          `json:"company"`
	Provider string          `json:"provider"`
	Dataset  *lead.Dataset   `json:"dataset"`
	Services []string        `json:"services,omitempty"`
	Results  []rating.Result `json:"results,omitempty"`
	Notice   string          `json:"notice,omitempty"`
}

// Fallbacks counts results that carry a failure reason.
func (r *Report) Fallbacks() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Qualifier wires the catalog and rating engine to a company.
type Qualifier struct {
	catalog *catalog.Catalog
	engine  *rating.Engine
	company config.CompanyConfig
}

// New creates a Qualifier.
func New(cat *catalog.Catalog, eng *rating.Engine, company config.CompanyConfig) *Qualifier {
	return &Qualifier{catalog: cat, engine: eng, company: company}
}

// Preview normalizes an uploaded table without rating it.
func (q *Qualifier) Preview(t *sheet.Table) (*lead.Dataset, error) {
	return lead.Normalize(t)
}

// Run normalizes t and rates every lead. A *lead.MissingColumnError is the
// only error returned; every other failure degrades inside the Report.
func (q *Qualifier) Run(ctx context.Context, t *sheet.Table, req Request) (*Report, error) {
	start := time.Now()
	log := zap.L().With(zap.String("provider", req.Provider))

	ds, err := lead.Normalize(t)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:    uuid.NewString(),
		Company:  q.company.Name,
		Provider: req.Provider,
		Dataset:  ds,
	}
	log = log.With(zap.String("run_id", rep.RunID))

	if strings.TrimSpace(req.APIKey) == "" {
		return q.skip(rep), nil
	}

	services := q.catalog.Services(ctx, q.company.ServicesURL)

	results, err := q.engine.RateAll(ctx, req.Provider, req.APIKey, services, ds.Leads)
	if errors.Is(err, rating.ErrMissingAPIKey) {
		return q.skip(rep), nil
	}
	rep.Services = services
	rep.Results = results

	log.Info("qualify: run complete",
		zap.Int("rows", len(ds.Leads)),
		zap.Int("services", len(services)),
		zap.Int("rated", len(results)),
		zap.Int("fallbacks", rep.Fallbacks()),
		zap.Duration("duration", time.Since(start)),
	)
	return rep, nil
}

func (q *Qualifier) skip(rep *Report) *Report {
	rep.Notice = MissingKeyNotice
	zap.L().Info("qualify: rating skipped, no api key",
		zap.String("run_id", rep.RunID),
		zap.Int("rows", len(rep.Dataset.Leads)),
	)
	return rep
}
