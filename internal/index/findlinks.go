package index

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/partforge/partforge/internal/config"
	"github.com/partforge/partforge/internal/httputil"
)

// hrefPattern extracts href targets from a plain HTML directory listing,
// the lowest-common-denominator find-links page format.
var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)

// distFilePattern recognizes an archive file name as "<project>-<version>.<ext>",
// the naming convention find-links pages and source indexes rely on.
var distFilePattern = regexp.MustCompile(`^([A-Za-z0-9_.]+?)-(\d[\w.\-]*?)\.(tar\.gz|tgz|tar\.xz|tar\.lz|zip)$`)

// FindLinksIndex treats a single find-links location — a local directory
// (file://) or an HTTP directory listing — as a flat pool of archive
// links, matching file names against distFilePattern to recover project
// and version.
type FindLinksIndex struct {
	Location string
	client   *http.Client
}

// NewFindLinksIndex builds a FindLinksIndex rooted at location, which may
// be a file:// URL, a bare filesystem path, or an http(s):// URL.
func NewFindLinksIndex(location string) *FindLinksIndex {
	return &FindLinksIndex{
		Location: location,
		client:   httputil.NewSecureClient(httputil.ClientOptions{Timeout: config.GetSocketTimeout()}),
	}
}

func (f *FindLinksIndex) Candidates(project string) ([]RemoteDist, error) {
	names, err := f.listNames()
	if err != nil {
		return nil, err
	}

	var out []RemoteDist
	for _, name := range names {
		m := distFilePattern.FindStringSubmatch(name)
		if m == nil || !strings.EqualFold(m[1], project) {
			continue
		}
		out = append(out, RemoteDist{
			Project:  m[1],
			Version:  m[2],
			URL:      f.joinURL(name),
			Basename: name,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Basename < out[j].Basename })
	return out, nil
}

func (f *FindLinksIndex) Download(dist RemoteDist, destDir string) (string, error) {
	destPath := filepath.Join(destDir, dist.Basename)

	if strings.HasPrefix(dist.URL, "file://") {
		u, err := url.Parse(dist.URL)
		if err != nil {
			return "", err
		}
		return destPath, copyFile(u.Path, destPath)
	}

	resp, err := f.client.Get(dist.URL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", dist.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("downloading %s: HTTP %d", dist.URL, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}

	return destPath, nil
}

func (f *FindLinksIndex) listNames() ([]string, error) {
	if strings.HasPrefix(f.Location, "file://") {
		u, err := url.Parse(f.Location)
		if err != nil {
			return nil, err
		}
		return listDir(u.Path)
	}

	if !strings.Contains(f.Location, "://") {
		return listDir(f.Location)
	}

	resp, err := f.client.Get(f.Location)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", f.Location, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range hrefPattern.FindAllStringSubmatch(string(body), -1) {
		names = append(names, filepath.Base(m[1]))
	}
	return names, nil
}

func (f *FindLinksIndex) joinURL(name string) string {
	if strings.HasPrefix(f.Location, "file://") || !strings.Contains(f.Location, "://") {
		base := strings.TrimPrefix(f.Location, "file://")
		return "file://" + filepath.Join(base, name)
	}
	return strings.TrimRight(f.Location, "/") + "/" + name
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
