// Package plugins fills the local plugins directory from a plain
// directory-index page. Every anchor on the page that looks like a
// plugin payload is downloaded unless it is already present. Plugin
// trouble never blocks a launch.
package plugins

import (
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

var anchorSel = cascadia.MustCompile("a[href]")

// Fetcher downloads through the content-addressed cache: plugin
// payloads rarely change, so repeated launches skip the network.
type Fetcher interface {
	Get(rawurl string) (string, error)
	DownloadCached(rawurl, fpath string) error
}

type Manager struct {
	Files billy.Filesystem
	Fetch Fetcher
	Log   zerolog.Logger
}

// Sync scrapes indexURL and downloads any listed plugin that is
// missing from pluginsDir. All failures are logged and swallowed.
func (m *Manager) Sync(indexURL, pluginsDir string) {
	if indexURL == "" {
		return
	}
	urls, err := m.scrape(indexURL)
	if err != nil {
		m.Log.Warn().Err(err).Msgf("list plugins at %q", indexURL)
		return
	}
	for _, rawurl := range urls {
		name := path.Base(rawurl)
		fpath := m.Files.Join(pluginsDir, name)
		if _, err := m.Files.Stat(fpath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			m.Log.Warn().Err(err).Msgf("stat %q", fpath)
			continue
		}
		m.Log.Info().Msgf("plugin %s missing, downloading from %s", name, rawurl)
		if err := m.Fetch.DownloadCached(rawurl, fpath); err != nil {
			m.Log.Warn().Err(err).Msgf("download plugin %q", name)
			continue
		}
		m.Log.Info().Msgf("plugin %s downloaded", name)
	}
}

// scrape parses the index page and returns absolute URLs for entries
// that look like files. Subdirectory and navigation links are skipped.
func (m *Manager) scrape(indexURL string) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, err
	}
	body, err := m.Fetch.Get(indexURL)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, n := range anchorSel.MatchAll(root) {
		href := anchorHref(n)
		if href == "" || strings.HasSuffix(href, "/") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			m.Log.Warn().Err(err).Msgf("bad href %q", href)
			continue
		}
		u := base.ResolveReference(ref)
		if path.Ext(u.Path) == "" {
			continue
		}
		urls = append(urls, u.String())
	}
	return urls, nil
}

func anchorHref(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		if attr.Key != "href" {
			continue
		}
		return attr.Val
	}
	return ""
}
