package fetcher

import (
	"bufio"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"path"

	"golang.org/x/crypto/sha3"

	"github.com/akrylysov/pogreb"
	"github.com/go-git/go-billy/v5"
)

// WithDatabase attaches a pogreb index of completed cache entries.
// Without it completeness falls back to a stat of the payload file.
func (dl *Fetcher) WithDatabase(db *pogreb.DB) *Fetcher {
	dl.Database = db
	return dl
}

// cachePath derives the cache location for a URL. Good enough is
// good enough.
func (dl *Fetcher) cachePath(rawurl string) (dir, base string) {
	sum := sha1.Sum([]byte(rawurl))
	hex := fmt.Sprintf("%x", sum)
	return "http", dl.Cache.Join(hex[:2], hex)
}

// Cached returns a reader for the payload of rawurl, downloading it
// into the cache on first use. Subsequent calls are served from disk.
func (dl *Fetcher) Cached(rawurl string) (billy.File, error) {
	dir, base := dl.cachePath(rawurl)
	if dl.complete(rawurl, dir, base) {
		return dl.openData(dir, base)
	}
	if err := dl.downloadCached(rawurl, dir, base); err != nil {
		return nil, err
	}
	dl.markComplete(rawurl)
	return dl.openData(dir, base)
}

// DownloadCached fetches rawurl through the cache and copies the
// payload to fpath on Files. Repeated downloads of the same URL are
// served from disk without touching the network.
func (dl *Fetcher) DownloadCached(rawurl, fpath string) (err error) {
	src, err := dl.Cached(rawurl)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			dl.Log.Warn().Err(cerr).Msgf("close %q", src.Name())
		}
	}()
	if dir := path.Dir(fpath); dir != "." {
		if err := dl.Files.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	dst, err := dl.Files.OpenFile(fpath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer func() {
		cerr := dst.Close()
		if err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(dst, src)
	return err
}

// Sums returns the checksum lines recorded for a cached URL.
func (dl *Fetcher) Sums(rawurl string) ([]string, error) {
	dir, base := dl.cachePath(rawurl)
	if !dl.complete(rawurl, dir, base) {
		if err := dl.downloadCached(rawurl, dir, base); err != nil {
			return nil, err
		}
		dl.markComplete(rawurl)
	}
	return dl.readSums(dir, base)
}

func (dl *Fetcher) complete(rawurl, dir, base string) bool {
	if dl.Database != nil {
		ok, err := dl.Database.Has([]byte(rawurl))
		if err != nil {
			dl.Log.Warn().Err(err).Msg("cache index lookup")
		} else if !ok {
			return false
		}
	}
	_, err := dl.statData(dir, base)
	return err == nil
}

func (dl *Fetcher) markComplete(rawurl string) {
	if dl.Database == nil {
		return
	}
	if err := dl.Database.Put([]byte(rawurl), []byte{1}); err != nil {
		dl.Log.Warn().Err(err).Msg("cache index put")
	}
}

// downloadCached fetches the payload while feeding the hash set the
// cache records beside every entry.
func (dl *Fetcher) downloadCached(rawurl, dir, base string) error {
	hashNames := []string{
		"md5",
		"sha1",
		"sha256",
		"keccak256",
	}
	hashes := []hash.Hash{
		md5.New(),
		sha1.New(),
		sha256.New(),
		sha3.New256(),
	}
	nhashes := len(hashes)
	flags := os.O_WRONLY | os.O_TRUNC | os.O_CREATE
	// Reopen with O_TRUNC on every attempt so a failed partial write
	// never leaks into the next one.
	err := dl.withRetry(fmt.Sprintf("cache %q", rawurl), func() error {
		for _, h := range hashes {
			h.Reset()
		}
		return dl.withData(dir, base, flags, func(f billy.File) (err error) {
			defer func() {
				cerr := f.Close()
				if err == nil {
					err = cerr
				}
			}()
			ww := make([]io.Writer, nhashes+1)
			for i, h := range hashes {
				ww[i] = h
			}
			ww[nhashes] = f
			w := io.MultiWriter(ww...)
			return dl.fetchFile(w, rawurl)
		})
	})
	if err != nil {
		return err
	}
	sums := make([]string, nhashes)
	for i, name := range hashNames {
		sums[i] = fmt.Sprintf("%s:%x", name, hashes[i].Sum(nil))
	}
	return dl.writeSums(dir, base, sums)
}

func (dl *Fetcher) openData(dir, base string) (billy.File, error) {
	var f billy.File
	err := dl.withData(dir, base, os.O_RDONLY, func(ff billy.File) error {
		f = ff
		return nil
	})
	return f, err
}

func (dl *Fetcher) readSums(dir, base string) ([]string, error) {
	sums := []string{}
	err := dl.withSums(dir, base, os.O_RDONLY, func(f billy.File) error {
		defer func() {
			if cerr := f.Close(); cerr != nil {
				dl.Log.Warn().Err(cerr).Msgf("close %q", f.Name())
			}
		}()
		s := bufio.NewScanner(f)
		for s.Scan() {
			sums = append(sums, s.Text())
		}
		return s.Err()
	})
	if err != nil {
		return nil, err
	}
	return sums, nil
}

func (dl *Fetcher) writeSums(dir, base string, sums []string) error {
	flags := os.O_WRONLY | os.O_TRUNC | os.O_CREATE
	return dl.withSums(dir, base, flags, func(f billy.File) (err error) {
		defer func() {
			cerr := f.Close()
			if err == nil {
				err = cerr
			}
		}()
		w := bufio.NewWriter(f)
		defer func() {
			ferr := w.Flush()
			if err == nil {
				err = ferr
			}
		}()
		for _, sum := range sums {
			if _, err = fmt.Fprintf(w, "%s\n", sum); err != nil {
				break
			}
		}
		return err
	})
}

func (dl *Fetcher) statData(dir, base string) (os.FileInfo, error) {
	return dl.statFile(dir, base, "dat")
}

func (dl *Fetcher) statFile(dir, base, ext string) (os.FileInfo, error) {
	fname := fmt.Sprintf("%s.%s", base, ext)
	fpath := dl.Cache.Join(dir, fname)
	return dl.Cache.Stat(fpath)
}

func (dl *Fetcher) withData(dir, base string, flag int, fn func(billy.File) error) error {
	return dl.withFile(dir, base, "dat", flag, fn)
}

func (dl *Fetcher) withSums(dir, base string, flag int, fn func(billy.File) error) error {
	return dl.withFile(dir, base, "sum", flag, fn)
}

func (dl *Fetcher) withFile(dir, base, ext string, flag int, fn func(billy.File) error) error {
	if err := dl.Cache.MkdirAll(dir, 0755); err != nil {
		return err
	}
	fname := fmt.Sprintf("%s.%s", base, ext)
	fpath := dl.Cache.Join(dir, fname)
	f, err := dl.Cache.OpenFile(fpath, flag, 0644)
	if err != nil {
		return err
	}
	return fn(f)
}
