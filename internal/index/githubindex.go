package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/partforge/partforge/internal/config"
	"github.com/partforge/partforge/internal/httputil"
)

// GitHubIndex serves RemoteDist candidates out of a GitHub repository's
// releases feed: each release asset whose name matches distFilePattern is
// one candidate. An optional token authenticates against the GitHub API,
// raising the otherwise low unauthenticated rate limit.
type GitHubIndex struct {
	Owner string
	Repo  string

	client     *github.Client
	httpClient *http.Client
}

// NewGitHubIndex builds a GitHubIndex for owner/repo. If token is
// non-empty, requests are authenticated via an oauth2 static token source.
func NewGitHubIndex(owner, repo, token string) *GitHubIndex {
	ctx := context.Background()

	var tc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(ctx, ts)
	}

	return &GitHubIndex{
		Owner:      owner,
		Repo:       repo,
		client:     github.NewClient(tc),
		httpClient: httputil.NewSecureClient(httputil.ClientOptions{Timeout: config.GetSocketTimeout()}),
	}
}

func (g *GitHubIndex) Candidates(project string) ([]RemoteDist, error) {
	ctx := context.Background()

	opts := &github.ListOptions{PerPage: 100}
	var out []RemoteDist

	for {
		releases, resp, err := g.client.Repositories.ListReleases(ctx, g.Owner, g.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", g.Owner, g.Repo, err)
		}

		for _, rel := range releases {
			for _, asset := range rel.Assets {
				name := asset.GetName()
				m := distFilePattern.FindStringSubmatch(name)
				if m == nil || !strings.EqualFold(m[1], project) {
					continue
				}

				dist := RemoteDist{
					Project:  m[1],
					Version:  m[2],
					URL:      asset.GetBrowserDownloadURL(),
					Basename: name,
				}
				if sigAsset := findSignatureAsset(rel.Assets, name); sigAsset != nil {
					dist.SignatureURL = sigAsset.GetBrowserDownloadURL()
				}
				out = append(out, dist)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

func (g *GitHubIndex) Download(dist RemoteDist, destDir string) (string, error) {
	destPath := filepath.Join(destDir, dist.Basename)

	resp, err := g.httpClient.Get(dist.URL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", dist.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("downloading %s: HTTP %d", dist.URL, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}

	if dist.SignatureURL != "" {
		if err := g.downloadSignature(dist.SignatureURL, destPath+".asc"); err != nil {
			return "", err
		}
	}

	return destPath, nil
}

func (g *GitHubIndex) downloadSignature(url, destPath string) error {
	resp, err := g.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("downloading signature %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("downloading signature %s: HTTP %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// findSignatureAsset locates a detached signature asset, named
// "<archive>.asc" or "<archive>.sig", for an archive named name.
func findSignatureAsset(assets []*github.ReleaseAsset, name string) *github.ReleaseAsset {
	for _, a := range assets {
		n := a.GetName()
		if n == name+".asc" || n == name+".sig" {
			return a
		}
	}
	return nil
}
