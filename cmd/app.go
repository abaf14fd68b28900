package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/catalog"
	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/provider"
	"github.com/sells-group/lead-qualifier/internal/qualify"
	"github.com/sells-group/lead-qualifier/internal/rating"
)

// appEnv holds the components shared by every command.
type appEnv struct {
	Registry  *provider.Registry
	Catalog   *catalog.Catalog
	Engine    *rating.Engine
	Qualifier *qualify.Qualifier
}

// initApp wires the provider registry, catalog and rating engine from c.
// Extra rating options are used by tests to swap transports.
func initApp(c *config.Config, opts ...rating.Option) *appEnv {
	reg := provider.NewRegistry(provider.ApplyOverrides(provider.Defaults(), c.Providers)...)
	cat := catalog.New(c.Catalog)
	eng := rating.New(reg, c.Rating, opts...)

	return &appEnv{
		Registry:  reg,
		Catalog:   cat,
		Engine:    eng,
		Qualifier: qualify.New(cat, eng, c.Company),
	}
}

// nopCloser wraps stdout so callers can always Close the output.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the file at path, or stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create output file %s", path)
	}
	return f, nil
}
