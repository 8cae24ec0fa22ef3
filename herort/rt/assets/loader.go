package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrNoMeshes      = errors.New("model has no meshes")
)

// Loader resolves model sources to local files and builds node trees from
// them. A source is a file path or an http(s) URL; URLs are downloaded once
// into CacheDir and reused afterwards.
type Loader struct {
	CacheDir string
	Client   *http.Client

	mu     sync.Mutex
	failed map[string]error
}

func NewLoader(cacheDir string) *Loader {
	return &Loader{CacheDir: cacheDir, Client: http.DefaultClient}
}

func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// cacheDir is unique per URL so that relative buffer URIs of a .gltf land
// next to it.
func (l *Loader) cacheDir(src string) string {
	return filepath.Join(l.CacheDir, uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String())
}

// Resolve returns a local path for src, downloading it first if needed.
func (l *Loader) Resolve(ctx context.Context, src string) (string, error) {
	if !IsRemote(src) {
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%s: %w", src, ErrAssetNotFound)
			}
			return "", err
		}
		return src, nil
	}
	return l.Prefetch(ctx, src)
}

// Prefetch downloads a remote model into the cache and returns its local
// path. External buffers of a .gltf are fetched alongside it. A failed
// download is not retried; later calls return the same error.
func (l *Loader) Prefetch(ctx context.Context, src string) (string, error) {
	l.mu.Lock()
	err := l.failed[src]
	l.mu.Unlock()
	if err != nil {
		return "", err
	}

	local, err := l.prefetch(ctx, src)
	if err != nil && ctx.Err() == nil {
		l.mu.Lock()
		if l.failed == nil {
			l.failed = make(map[string]error)
		}
		l.failed[src] = err
		l.mu.Unlock()
	}
	return local, err
}

func (l *Loader) prefetch(ctx context.Context, src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", src, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("%s: no file name in url", src)
	}
	dir := l.cacheDir(src)
	local := filepath.Join(dir, name)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	raw, err := l.download(ctx, u)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(path.Ext(name), ".gltf") {
		var doc gltf.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return "", fmt.Errorf("decode %s: %w", src, err)
		}
		for _, b := range doc.Buffers {
			if b.URI == "" || strings.HasPrefix(b.URI, "data:") {
				continue
			}
			if err := l.fetchRelative(ctx, u, dir, b.URI); err != nil {
				return "", err
			}
		}
	}

	// The model file is written last so a partial download is never seen as
	// cached.
	if err := writeFile(local, raw); err != nil {
		return "", err
	}
	return local, nil
}

// PrefetchAll downloads every remote source concurrently. Local sources are
// skipped. A failing source does not stop the others; the first error is
// returned.
func (l *Loader) PrefetchAll(ctx context.Context, srcs ...string) error {
	var g errgroup.Group
	for _, src := range srcs {
		if !IsRemote(src) {
			continue
		}
		g.Go(func() error {
			_, err := l.Prefetch(ctx, src)
			return err
		})
	}
	return g.Wait()
}

func (l *Loader) fetchRelative(ctx context.Context, base *url.URL, dir, uri string) error {
	rel, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("buffer uri %q: %w", uri, err)
	}
	clean := path.Clean(rel.Path)
	if rel.IsAbs() || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return fmt.Errorf("buffer uri %q escapes the model directory", uri)
	}
	data, err := l.download(ctx, base.ResolveReference(rel))
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, filepath.FromSlash(clean)), data)
}

func (l *Loader) download(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", u, ErrAssetNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	tmp := name + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, name)
}
