//go:build !integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-qualifier/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"preview", "services", "providers", "rate", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leadqual", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRateCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "provider", "api-key", "format", "output"} {
		assert.NotNil(t, rateCmd.Flags().Lookup(name), "rate should have --%s flag", name)
	}
	assert.Equal(t, "table", rateCmd.Flags().Lookup("format").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

// testConfig returns a valid configuration pointing the services page and the
// Groq provider at local test servers.
func testConfig(servicesURL, groqURL string) *config.Config {
	c := &config.Config{
		Company: config.CompanyConfig{Name: "Acme Workforce", ServicesURL: servicesURL},
		Catalog: config.CatalogConfig{TimeoutSecs: 5, MaxServices: 10, Keywords: config.DefaultKeywords},
		Rating:  config.RatingConfig{DefaultProvider: "Groq", TimeoutSecs: 5, MaxTokens: 5},
		Server:  config.ServerConfig{Port: 8080, MaxUploadMB: 10},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
	if groqURL != "" {
		c.Providers = map[string]config.ProviderOverride{"groq": {Endpoint: groqURL}}
	}
	return c
}

func servicesPage(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ul><li>Contract staffing</li><li>Compliance training</li><li>Blog</li></ul>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setFlags sets flag values on cmd and restores their defaults after the test.
func setFlags(t *testing.T, cmd *cobra.Command, values map[string]string) {
	t.Helper()
	for name, v := range values {
		require.NoError(t, cmd.Flags().Set(name, v))
	}
	t.Cleanup(func() {
		for name := range values {
			f := cmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func useContext(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetContext(context.TODO()) })
}
