//go:build !integration

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-qualifier/internal/config"
)

func TestServicesCmd(t *testing.T) {
	cfg = testConfig(servicesPage(t).URL, "")
	stdout, _ := captureOutput(t)
	useContext(t, servicesCmd)

	require.NoError(t, servicesCmd.RunE(servicesCmd, nil))
	assert.Equal(t, "Contract staffing\nCompliance training\n", stdout.String())
}

func TestServicesCmd_URLFlagAndSoftFailure(t *testing.T) {
	cfg = testConfig(servicesPage(t).URL, "")
	stdout, _ := captureOutput(t)
	useContext(t, servicesCmd)
	setFlags(t, servicesCmd, map[string]string{"url": "http://127.0.0.1:1/services"})

	require.NoError(t, servicesCmd.RunE(servicesCmd, nil))
	assert.True(t, strings.HasPrefix(stdout.String(), "Error fetching services: "))
}

func TestProvidersCmd(t *testing.T) {
	cfg = testConfig("http://127.0.0.1:1", "")
	stdout, _ := captureOutput(t)

	require.NoError(t, providersCmd.RunE(providersCmd, nil))

	out := stdout.String()
	for _, name := range []string{"OpenAI", "Groq", "Together AI", "Anthropic", "Gemini"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "not configured")

	var groqLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Groq") {
			groqLine = line
		}
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(groqLine), "*"), "Groq is the default")
}

func TestProvidersCmd_Override(t *testing.T) {
	cfg = testConfig("http://127.0.0.1:1", "")
	cfg.Providers = map[string]config.ProviderOverride{"gemini": {Endpoint: "https://gemini.example/v1/chat/completions"}}
	stdout, _ := captureOutput(t)

	require.NoError(t, providersCmd.RunE(providersCmd, nil))
	assert.NotContains(t, stdout.String(), "not configured")
}

func TestNewHTTPServer(t *testing.T) {
	c := testConfig(servicesPage(t).URL, "")
	srv := newHTTPServer(c, initApp(c), 9090)
	assert.Equal(t, ":9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))
	var providers []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &providers))
	assert.Len(t, providers, 5)
}
