// Package dlcache implements the download cache: fetching a distribution
// archive either straight into a temp file or via an on-disk cache,
// honoring offline mode, fallback mode, and MD5 checksum verification.
package dlcache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/partforge/partforge/internal/config"
	"github.com/partforge/partforge/internal/errdefs"
	"github.com/partforge/partforge/internal/httputil"
)

// Config mirrors the buildout download-cache knobs: all optional except
// that setting any of Namespace/Fallback/HashName without a Directory is
// rejected by New. Offline needs no Directory.
type Config struct {
	Directory string // base cache directory; "" disables caching
	Namespace string // subdirectory inside Directory
	Offline   bool
	Fallback  bool
	HashName  bool
}

// Cache fetches URLs according to Config, optionally through an on-disk
// cache directory.
type Cache struct {
	cfg    Config
	client *http.Client
}

// New validates cfg and returns a Cache. Per the resolved open question on
// "download cache without a directory": if Namespace, Fallback, or
// HashName is set but Directory is empty, New returns a BadConfigValue
// error rather than silently behaving as if caching were disabled.
// Offline alone is accepted without a Directory; it only forbids
// non-file:// downloads.
func New(cfg Config) (*Cache, error) {
	if cfg.Directory == "" && (cfg.Namespace != "" || cfg.Fallback || cfg.HashName) {
		return nil, errdefs.New(errdefs.BadConfigValue,
			"download-cache options were set without a download-cache directory")
	}

	return &Cache{
		cfg: cfg,
		client: httputil.NewSecureClient(httputil.ClientOptions{
			Timeout: config.GetSocketTimeout(),
		}),
	}, nil
}

// Fetch retrieves url, verifying md5sum if non-empty, and returns the
// local path to the fetched content plus whether that path is a temp file
// the caller owns and must remove.
func (c *Cache) Fetch(rawURL, md5sum string) (path string, isTemp bool, err error) {
	if c.cfg.Directory != "" {
		return c.fetchCached(rawURL, md5sum)
	}
	return c.fetchDirect(rawURL, md5sum, "")
}

func (c *Cache) cacheDir() string {
	return filepath.Join(c.cfg.Directory, c.cfg.Namespace)
}

func (c *Cache) fetchCached(rawURL, md5sum string) (string, bool, error) {
	if _, err := os.Stat(c.cfg.Directory); err != nil {
		return "", false, errdefs.New(errdefs.BadConfigValue,
			"the directory %q to be used as a download cache doesn't exist", c.cfg.Directory)
	}

	dir := c.cacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, err
	}

	cachedPath := filepath.Join(dir, c.filename(rawURL))

	if fileExists(cachedPath) {
		if c.cfg.Fallback {
			if _, _, err := c.fetchDirect(rawURL, md5sum, cachedPath); err != nil {
				if isChecksumErr(err) {
					return "", false, err
				}
				// Tolerate network failure: fall back to whatever is cached.
			}
		}

		if !checkMD5(cachedPath, md5sum) {
			return "", false, badChecksum(rawURL, cachedPath)
		}
		return cachedPath, false, nil
	}

	return c.fetchDirect(rawURL, md5sum, cachedPath)
}

// fetchDirect fetches rawURL directly (no cache lookup), placing the
// result at destPath if non-empty, otherwise in a temp file the caller
// must clean up.
func (c *Cache) fetchDirect(rawURL, md5sum, destPath string) (string, bool, error) {
	if localPath, ok := fileURLPath(rawURL); ok {
		if !checkMD5(localPath, md5sum) {
			return "", false, badChecksum(rawURL, localPath)
		}
		return locateAt(localPath, destPath)
	}

	if c.cfg.Offline {
		return "", false, errdefs.New(errdefs.Offline,
			"Couldn't download '%s' in offline mode.", rawURL)
	}

	tmpPath, err := c.downloadToTemp(rawURL)
	if err != nil {
		return "", false, err
	}

	if !checkMD5(tmpPath, md5sum) {
		os.Remove(tmpPath)
		return "", false, badChecksum(rawURL, tmpPath)
	}

	if destPath != "" {
		if err := atomicMove(tmpPath, destPath); err != nil {
			os.Remove(tmpPath)
			return "", false, err
		}
		return destPath, false, nil
	}

	return tmpPath, true, nil
}

func (c *Cache) downloadToTemp(rawURL string) (string, error) {
	resp, err := c.client.Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("downloading %s: HTTP %d", rawURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "partforge-download-")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	return tmpPath, nil
}

// filename derives a cache file name for rawURL: the MD5 hex digest of
// the URL when HashName is set, otherwise the last non-empty path
// segment (or "host:port" if the URL has no path segments at all).
func (c *Cache) filename(rawURL string) string {
	if c.cfg.HashName {
		sum := md5.Sum([]byte(rawURL))
		return hex.EncodeToString(sum[:])
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		sum := md5.Sum([]byte(rawURL))
		return hex.EncodeToString(sum[:])
	}

	path := strings.TrimRight(u.Path, "/")
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		if name := path[idx+1:]; name != "" {
			return name
		}
	} else if path != "" {
		return path
	}

	return u.Host
}

func fileURLPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return u.Path, true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// locateAt returns source unchanged when dest is empty or already refers
// to the same file; otherwise it copies source to dest and returns dest.
func locateAt(source, dest string) (string, bool, error) {
	if dest == "" {
		return source, false, nil
	}
	if sameFile(source, dest) {
		return source, false, nil
	}

	in, err := os.Open(source)
	if err != nil {
		return "", false, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", false, err
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", false, err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", false, err
	}

	return dest, false, nil
}

func sameFile(a, b string) bool {
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	if aerr != nil || berr != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func atomicMove(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

func badChecksum(rawURL, path string) error {
	return errdefs.New(errdefs.BadChecksum,
		"MD5 checksum mismatch for download from %q at %q", rawURL, path)
}

func isChecksumErr(err error) bool {
	uerr, ok := err.(*errdefs.UserErr)
	return ok && uerr.Kind == errdefs.BadChecksum
}
