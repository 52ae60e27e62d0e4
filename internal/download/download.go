// Package download installs an application that is not available through
// the package manager: fetch its download page, find the asset link,
// download the archive, and unpack the .app bundle into /Applications.
package download

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"macsetup/internal/catalog"
)

// Installer performs direct-download installs.
type Installer struct {
	Client  *http.Client
	AppsDir string // destination, normally /Applications
}

// New returns an Installer targeting /Applications.
func New() *Installer {
	return &Installer{Client: http.DefaultClient, AppsDir: "/Applications"}
}

// Install fetches the download page named by spec, resolves the first
// asset link matching spec.Suffix, downloads it, and extracts any .app
// bundle inside into AppsDir.
func (i *Installer) Install(ctx context.Context, spec catalog.DownloadSpec, label string) error {
	assetURL, err := i.resolveAssetURL(ctx, spec)
	if err != nil {
		return fmt.Errorf("resolving download for %s: %w", label, err)
	}

	archive, err := i.fetchToTemp(ctx, assetURL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", label, err)
	}
	defer os.Remove(archive)

	if err := extractApps(archive, i.AppsDir); err != nil {
		return fmt.Errorf("extracting %s: %w", label, err)
	}
	return nil
}

// resolveAssetURL fetches the download page and returns the first anchor
// href ending in the asset suffix, resolved against the page URL.
func (i *Installer) resolveAssetURL(ctx context.Context, spec catalog.DownloadSpec) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Page, nil)
	if err != nil {
		return "", err
	}
	resp, err := i.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download page returned %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing download page: %w", err)
	}

	href := findAssetHref(doc, spec.Suffix)
	if href == "" {
		return "", fmt.Errorf("no link ending in %q on %s", spec.Suffix, spec.Page)
	}

	base, err := url.Parse(spec.Page)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad asset link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func findAssetHref(n *html.Node, suffix string) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" && strings.HasSuffix(attr.Val, suffix) {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := findAssetHref(c, suffix); href != "" {
			return href
		}
	}
	return ""
}

func (i *Installer) fetchToTemp(ctx context.Context, assetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := i.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("asset returned %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "macsetup-download-*.zip")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// extractApps unpacks every entry under a top-level *.app directory of the
// zip archive into destDir, preserving file modes.
func extractApps(archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	found := false
	for _, f := range r.File {
		parts := strings.SplitN(f.Name, "/", 2)
		if !strings.HasSuffix(parts[0], ".app") {
			continue
		}
		found = true
		if err := extractFile(f, destDir); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("archive contains no .app bundle")
	}
	return nil
}

func extractFile(f *zip.File, destDir string) error {
	dest := filepath.Join(destDir, filepath.Clean(f.Name))
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
