package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    *domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := *m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetLLMProvider(domain.AIProvider, string, string) error { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(domain.AIProvider, string, string) error {
	return nil
}

func (m *mockSettingsService) SetStrategy(domain.SearchStrategy) error { return nil }

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig(context.Context) error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result   domain.AnswerResult
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, q string) domain.AnswerResult {
	m.question = q
	return m.result
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	stats    domain.IngestStats
	err      error
	ingested string
	csv      string
}

func (m *mockIngestService) Ingest(_ context.Context, r io.Reader) (domain.IngestStats, error) {
	data, _ := io.ReadAll(r)
	m.ingested = string(data)
	return m.stats, m.err
}

func (m *mockIngestService) LoadSideTable(_ context.Context, r io.Reader) (int, error) {
	data, _ := io.ReadAll(r)
	m.csv = string(data)
	return strings.Count(strings.TrimSpace(m.csv), "\n"), m.err
}

// mockUserService is a mock implementation of driving.UserService.
type mockUserService struct {
	registered map[string][2]string
	user       *domain.User
	err        error
}

func (m *mockUserService) Register(_ context.Context, id, password, apiKey string) error {
	if m.err != nil {
		return m.err
	}
	if m.registered == nil {
		m.registered = map[string][2]string{}
	}
	m.registered[id] = [2]string{password, apiKey}
	return nil
}

func (m *mockUserService) Login(_ context.Context, _, _ string) (*domain.User, error) {
	return m.user, m.err
}

func ptr[T any](v T) *T { return &v }

// withSettings installs a settings service for the duration of the test.
func withSettings(t *testing.T, s driving.SettingsService) {
	t.Helper()
	old := settingsService
	settingsService = s
	t.Cleanup(func() { settingsService = old })
}

// withRuntime installs a prebuilt runtime. The root command closes and
// clears it after each run, so it is reinstalled by execute.
func withRuntime(t *testing.T, r *Runtime) {
	t.Helper()
	oldWire := wire
	wire = func(context.Context, *domain.AppSettings) (*Runtime, error) { return r, nil }
	t.Cleanup(func() {
		wire = oldWire
		rt = nil
	})
}

func resetFlags() {
	askK, askStrategy, askJSON, askMarkdown, askSaveImages = 0, "", false, false, ""
	ingestSideTable = ""
	userAPIKey = ""
	serveAddr, serveBasicAuth = "", false
	mcpPort = 0
	versionShort = false
	verbose = false
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}
