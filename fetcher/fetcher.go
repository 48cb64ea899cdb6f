// Package fetcher is the launcher's HTTP collaborator: retrying
// file downloads, small GET/POST requests for the auth API, and a
// content-addressed download cache for payloads worth keeping across
// runs (plugins, the bundled JRE archive).
package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/akrylysov/pogreb"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

var ErrBadStatus = errors.New("unexpected http status")

const (
	maxAttempts = 3

	defaultRetryDelay = 2 * time.Second

	// maxBodySize bounds GET/POST response reads. The auth API and
	// index pages are tiny; anything larger is not worth buffering.
	maxBodySize = 1024 * 1024
)

// Fetcher performs all network access for the launcher. Files is the
// filesystem direct downloads land on; Cache, when set, roots the
// content-addressed download cache (see cache.go).
type Fetcher struct {
	Files    billy.Filesystem
	Cache    billy.Filesystem
	Client   *http.Client
	Database *pogreb.DB
	Log      zerolog.Logger

	// Delay overrides the pause between retry attempts. Zero means
	// the default two seconds.
	Delay time.Duration
}

func (dl *Fetcher) retryDelay() time.Duration {
	if dl.Delay > 0 {
		return dl.Delay
	}
	return defaultRetryDelay
}

// DownloadFile fetches rawurl into fpath on Files, creating parent
// directories. It retries transient failures and removes the partial
// output on every failed attempt, so a failure leaves no file behind.
func (dl *Fetcher) DownloadFile(rawurl, fpath string) error {
	if dir := path.Dir(fpath); dir != "." {
		if err := dl.Files.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	err := dl.withRetry(fmt.Sprintf("download %q", rawurl), func() error {
		return dl.downloadOnce(rawurl, fpath)
	})
	if err != nil {
		if rerr := dl.Files.Remove(fpath); rerr != nil && !os.IsNotExist(rerr) {
			dl.Log.Warn().Err(rerr).Msgf("remove partial %q", fpath)
		}
		return err
	}
	return nil
}

func (dl *Fetcher) downloadOnce(rawurl, fpath string) (err error) {
	f, err := dl.Files.OpenFile(fpath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return dl.fetchFile(f, rawurl)
}

// Get fetches rawurl and returns the response body, retrying
// transient failures. The read is bounded by maxBodySize.
func (dl *Fetcher) Get(rawurl string) (string, error) {
	var body string
	err := dl.withRetry(fmt.Sprintf("get %q", rawurl), func() error {
		resp, err := dl.Client.Get(rawurl)
		if err != nil {
			return err
		}
		b, err := dl.readBody(resp, rawurl)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

// PostJSON posts a JSON document to rawurl and returns the response
// body, retrying transient failures.
func (dl *Fetcher) PostJSON(rawurl string, payload []byte) (string, error) {
	var body string
	err := dl.withRetry(fmt.Sprintf("post %q", rawurl), func() error {
		resp, err := dl.Client.Post(rawurl, "application/json", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		b, err := dl.readBody(resp, rawurl)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (dl *Fetcher) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			dl.Log.Warn().Err(err).Msgf("retry %d/%d: %s", attempt, maxAttempts, op)
			time.Sleep(dl.retryDelay())
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

func (dl *Fetcher) fetchFile(w io.Writer, rawurl string) error {
	resp, err := dl.Client.Get(rawurl)
	if err != nil {
		return err
	}
	r := resp.Body
	defer func() {
		if cerr := r.Close(); cerr != nil {
			dl.Log.Warn().Err(cerr).Msgf("close %q", rawurl)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s for %q", ErrBadStatus, resp.Status, rawurl)
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	return nil
}

func (dl *Fetcher) readBody(resp *http.Response, rawurl string) (string, error) {
	r := resp.Body
	defer func() {
		if cerr := r.Close(); cerr != nil {
			dl.Log.Warn().Err(cerr).Msgf("close %q", rawurl)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s for %q", ErrBadStatus, resp.Status, rawurl)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, io.LimitReader(r, maxBodySize)); err != nil {
		return "", err
	}
	return b.String(), nil
}
