package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"forgeline/internal/config"
	"forgeline/internal/content"
	"forgeline/internal/database"
	"forgeline/internal/i18n"
	"forgeline/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "correct-horse-battery"

func writePost(t *testing.T, root, locale, slug, date, category string, tags string) {
	t.Helper()
	dir := filepath.Join(root, locale)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	raw := "---\ntitle: \"" + slug + " title\"\ndescription: \"about " + slug + "\"\ndate: " + date +
		"\ncategory: " + category + "\ntags: [" + tags + "]\n---\n\nBody of " + slug + ".\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, slug+".md"), []byte(raw), 0o644))
}

type testEnv struct {
	srv *Server
	app *fiber.App
}

// recordingMailer captures sent submissions instead of delivering them.
type recordingMailer struct {
	mu   sync.Mutex
	sent []*models.Submission
}

func (m *recordingMailer) Send(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	contentDir := t.TempDir()
	writePost(t, contentDir, "en", "laser-basics", "2026-03-09", "fabrication", "laser-cutting, steel")
	writePost(t, contentDir, "en", "tig-vs-mig", "2026-03-07", "welding", "tig, mig")
	writePost(t, contentDir, "en", "press-brake-tips", "2026-03-03", "fabrication", "bending")
	writePost(t, contentDir, "es", "corte-laser", "2026-03-08", "fabricacion", "laser")

	translationDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(translationDir, "en.yml"),
		[]byte("common:\n  contact_us: \"Contact us\"\n  request_quote: \"Request a quote\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(translationDir, "es.yml"),
		[]byte("common:\n  contact_us: \"Contáctenos\"\n"), 0o644))

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:              "0",
		Env:               "test",
		SiteURL:           "https://forgeline.example",
		SiteName:          "Forgeline Metal Works",
		SiteDescription:   "Custom metal fabrication",
		ContentDir:        contentDir,
		TranslationDir:    translationDir,
		DefaultLocale:     "en",
		FallbackAuthor:    "Forgeline Team",
		JWTSecret:         "test-secret-key-for-the-suite",
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)

	translator, err := i18n.Load(translationDir, "en")
	require.NoError(t, err)

	provider := content.NewFSProvider(contentDir)
	reader := content.NewReader(provider, content.ReaderOptions{FallbackAuthor: cfg.FallbackAuthor})
	library := content.NewLibrary(reader, nil)
	require.NoError(t, library.Rebuild(context.Background()))

	srv, err := NewServerWithDeps(cfg, db, nil, library, translator)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	return &testEnv{srv: srv, app: app}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeJSON(t *testing.T, body []byte, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, dest))
}
