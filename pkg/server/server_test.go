package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumangal44/fresh/pkg/fresh"
	"github.com/Sumangal44/fresh/pkg/island"
)

var counter = island.MustDefine(island.Spec{
	Name:     "Counter",
	Template: `<div><p class="font-bold" data-bind="count">{{.count}}</p><button data-on-click="dec">-1</button><button data-on-click="inc">+1</button></div>`,
	Actions: island.Actions{
		"dec": {island.Add("count", -1)},
		"inc": {island.Add("count", 1)},
	},
})

var greetTemplate = fresh.MustTemplate("greet", `<p>Hello {{.}}</p>`)

func testManifest() *fresh.Manifest {
	return &fresh.Manifest{
		Routes: []fresh.Route{
			{Pattern: "/", Page: func(ctx *fresh.PageContext) (template.HTML, error) {
				return ctx.Island(counter, island.State{"count": 3})
			}},
			{Pattern: "/api/joke", Handler: func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"joke": "knock knock"})
			}},
			{Pattern: "/api/panic", Handler: func(c *fiber.Ctx) error {
				panic("boom")
			}},
			{Pattern: "/api/fail", Handler: func(c *fiber.Ctx) error {
				return fmt.Errorf("database unavailable")
			}},
			{Pattern: "/:name", Page: func(ctx *fresh.PageContext) (template.HTML, error) {
				return ctx.Render(greetTemplate, ctx.Param("name"))
			}},
		},
		Islands: []*island.Island{counter},
	}
}

func quietLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{Level: log.DebugLevel})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	base := []Option{
		WithEnvFile(""),
		WithHost("127.0.0.1"),
		WithPort(0),
		WithStaticDir(t.TempDir()),
		WithStdout(io.Discard),
		WithLogger(quietLogger(io.Discard)),
	}
	s, err := New(testManifest(), append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string, header ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := s.Fiber().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestLifecycle(t *testing.T) {
	var stdout bytes.Buffer
	s := newTestServer(t, WithStdout(&stdout))

	assert.Equal(t, Starting, s.State())
	assert.Nil(t, s.Addr())
	assert.Empty(t, s.URL())

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-s.Ready():
	default:
		t.Fatal("ready not closed after Start")
	}
	assert.Equal(t, Listening, s.State())

	port := s.Addr().(*net.TCPAddr).Port
	want := fmt.Sprintf("Listening on http://127.0.0.1:%d/\n", port)
	assert.Equal(t, want, stdout.String())
	assert.True(t, strings.HasPrefix(stdout.String(), ReadyPrefix))

	resp, err := http.Get(s.URL())
	require.NoError(t, err)
	html := body(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, `data-frsh-island="Counter"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, Stopped, s.State())

	_, err = net.DialTimeout("tcp", s.Addr().String(), time.Second)
	assert.Error(t, err, "socket should be released")

	require.NoError(t, s.Shutdown(ctx), "second shutdown is a no-op")
	assert.Equal(t, 1, strings.Count(stdout.String(), ReadyPrefix))
}

func TestStartTwiceFails(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	assert.Error(t, s.Start(context.Background()))
}

func TestStartFailsOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := newTestServer(t, WithPort(ln.Addr().(*net.TCPAddr).Port))
	err = s.Start(context.Background())
	require.Error(t, err)
	assert.NotEqual(t, Listening, s.State())
}

func TestShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, Stopped, s.State())
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)

	resp := get(t, s, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "3", doc.Find("[data-frsh-island] p").Text())
	assert.Equal(t, 1, doc.Find("script#"+island.StateScriptID).Length())
	assert.Zero(t, doc.Find("style").Length(), "no utility css without twind")
}

func TestDynamicPage(t *testing.T) {
	s := newTestServer(t)

	resp := get(t, s, "/alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := body(t, resp)
	assert.Contains(t, out, "<p>Hello alice</p>")
	assert.NotContains(t, out, island.ClientScriptPath)
}

func TestAPIHandler(t *testing.T) {
	s := newTestServer(t)

	resp := get(t, s, "/api/joke")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "knock knock", got["joke"])
}

func TestClientScript(t *testing.T) {
	s := newTestServer(t)

	resp := get(t, s, island.ClientScriptPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "javascript")
	assert.Equal(t, string(island.ClientScript), body(t, resp))
}

func TestRequestFailuresAre500(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, WithLogger(quietLogger(&logs)))

	for _, path := range []string{"/api/panic", "/api/fail"} {
		resp := get(t, s, path)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
	}
	assert.Contains(t, logs.String(), "database unavailable")

	resp := get(t, s, "/api/joke")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "server keeps serving after a panic")
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	resp := get(t, s, "/a/b/c")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticFilesWithETag(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.svg")
	require.NoError(t, os.WriteFile(logo, []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), 0o644))

	s := newTestServer(t, WithStaticDir(dir))

	resp := get(t, s, "/logo.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "image/svg+xml")
	etag := resp.Header.Get(fiber.HeaderETag)
	require.NotEmpty(t, etag)
	assert.Contains(t, body(t, resp), "<svg")

	resp = get(t, s, "/logo.svg", fiber.HeaderIfNoneMatch, etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body(t, resp))

	require.NoError(t, os.WriteFile(logo, []byte(`<svg xmlns="http://www.w3.org/2000/svg"><g/></svg>`), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(logo, later, later))

	resp = get(t, s, "/logo.svg", fiber.HeaderIfNoneMatch, etag)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, etag, resp.Header.Get(fiber.HeaderETag))
}

func TestStaticDoesNotEscapeRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "static")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("TOP-SECRET-CONTENT"), 0o644))

	s := newTestServer(t, WithStaticDir(root))

	resp := get(t, s, "/../secret.txt")
	assert.NotContains(t, body(t, resp), "TOP-SECRET-CONTENT")
}

func TestTwindStylesheet(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "twind.config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("preflight: false\n"), 0o644))

	s := newTestServer(t, WithTwind(cfg))

	resp := get(t, s, "/")
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, ".font-bold{font-weight:700}", doc.Find("style#__FRSH_TWIND").Text())
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Run("invalid manifest", func(t *testing.T) {
		_, err := New(&fresh.Manifest{Routes: []fresh.Route{{Pattern: "/"}}}, WithEnvFile(""))
		require.Error(t, err)
	})
	t.Run("port out of range", func(t *testing.T) {
		_, err := New(testManifest(), WithEnvFile(""), WithPort(70000))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Port")
	})
	t.Run("missing twind config", func(t *testing.T) {
		_, err := New(testManifest(), WithEnvFile(""), WithTwind(filepath.Join(t.TempDir(), "missing.yaml")))
		require.Error(t, err)
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunStopsOnCancel(t *testing.T) {
	var stdout syncBuffer
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testManifest(),
			WithEnvFile(""),
			WithHost("127.0.0.1"),
			WithPort(0),
			WithStdout(&stdout),
			WithLogger(quietLogger(io.Discard)),
		)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), ReadyPrefix)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "listening", Listening.String())
	assert.Equal(t, "shutting down", ShuttingDown.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
