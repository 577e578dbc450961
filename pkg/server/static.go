package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const digestCacheSize = 256

type digest struct {
	modTime time.Time
	size    int64
	etag    string
}

// staticHandler serves files under root with strong ETags. Digests are
// cached by path and invalidated when size or mtime change.
type staticHandler struct {
	root    string
	digests *lru.Cache[string, digest]
}

func newStaticHandler(s *Server) (*staticHandler, error) {
	cache, err := lru.New[string, digest](digestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating digest cache: %w", err)
	}
	return &staticHandler{root: s.cfg.StaticDir, digests: cache}, nil
}

// Handle serves a matching file or passes the request on.
func (h *staticHandler) Handle(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
		return c.Next()
	}

	name := path.Clean("/" + c.Path())
	if name == "/" || strings.Contains(name, "\x00") {
		return c.Next()
	}
	file := filepath.Join(h.root, filepath.FromSlash(name))

	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return c.Next()
	}

	etag, data, err := h.etag(file, info)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderETag, etag)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && etagMatches(match, etag) {
		return c.SendStatus(fiber.StatusNotModified)
	}

	if data == nil {
		if data, err = os.ReadFile(file); err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
	}
	c.Type(strings.TrimPrefix(filepath.Ext(file), "."))
	return c.Send(data)
}

// etag returns the file's ETag. When the digest had to be computed the file
// contents are returned too.
func (h *staticHandler) etag(file string, info os.FileInfo) (string, []byte, error) {
	if d, ok := h.digests.Get(file); ok && d.size == info.Size() && d.modTime.Equal(info.ModTime()) {
		return d.etag, nil, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", file, err)
	}
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	h.digests.Add(file, digest{modTime: info.ModTime(), size: info.Size(), etag: etag})
	return etag, data, nil
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
