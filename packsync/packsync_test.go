package packsync

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flurrymoe/purrlauncher/archive"
)

// fetchMap serves canned payloads by URL, standing in for the
// retrying HTTP fetcher.
type fetchMap struct {
	files    billy.Filesystem
	payloads map[string][]byte
	calls    []string
}

func (f *fetchMap) DownloadFile(rawurl, fpath string) error {
	f.calls = append(f.calls, rawurl)
	data, ok := f.payloads[rawurl]
	if !ok {
		return errors.New("download failed")
	}
	return util.WriteFile(f.files, fpath, data, 0644)
}

func packZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newSyncer(files billy.Filesystem, fetch Fetcher) *Syncer {
	return &Syncer{
		Files:  files,
		Fetch:  fetch,
		Expand: &archive.Extractor{Files: files, Log: zerolog.Nop()},
		Log:    zerolog.Nop(),
	}
}

func TestSyncSkipsWithoutURLs(t *testing.T) {
	files := memfs.New()
	s := newSyncer(files, &fetchMap{files: files})

	v, err := s.Sync("", "", "1.0.0", "minecraft")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)
}

func TestSyncUpToDateNoMutation(t *testing.T) {
	files := memfs.New()
	require.NoError(t, util.WriteFile(files, "minecraft/mods/a.jar", []byte("keep"), 0644))
	require.NoError(t, util.WriteFile(files, "minecraft/config/x.cfg", []byte("keep"), 0644))
	require.NoError(t, util.WriteFile(files, "minecraft/servers.dat", []byte("keep"), 0644))

	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{"version": "1.0.0"}`),
	}}
	s := newSyncer(files, fetch)

	v, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	// Only the manifest was fetched, and the pack content is intact.
	assert.Equal(t, []string{"https://x/manifest"}, fetch.calls)
	for _, f := range []string{"minecraft/mods/a.jar", "minecraft/config/x.cfg", "minecraft/servers.dat"} {
		data, err := util.ReadFile(files, f)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))
	}
	_, err = files.Stat("minecraft/remote_manifest.json")
	assert.True(t, os.IsNotExist(err), "temp manifest should be removed")
}

func TestSyncStaleWipesAndExtracts(t *testing.T) {
	files := memfs.New()
	require.NoError(t, util.WriteFile(files, "minecraft/mods/old.jar", []byte("old"), 0644))
	require.NoError(t, util.WriteFile(files, "minecraft/shaderpacks/old.zip", []byte("old"), 0644))
	require.NoError(t, util.WriteFile(files, "minecraft/servers.dat", []byte("old"), 0644))
	require.NoError(t, util.WriteFile(files, "minecraft/options.txt", []byte("user data"), 0644))

	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{"version": "1.1.0"}`),
		"https://x/pack": packZip(t, map[string]string{
			"mods/new.jar":      "new",
			"config/common.cfg": "new",
		}),
	}}
	s := newSyncer(files, fetch)

	v, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", v)

	_, err = files.Stat("minecraft/mods/old.jar")
	assert.True(t, os.IsNotExist(err))
	_, err = files.Stat("minecraft/shaderpacks/old.zip")
	assert.True(t, os.IsNotExist(err))
	_, err = files.Stat("minecraft/servers.dat")
	assert.True(t, os.IsNotExist(err))

	data, err := util.ReadFile(files, "minecraft/mods/new.jar")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// Files outside the wiped subtrees survive.
	data, err = util.ReadFile(files, "minecraft/options.txt")
	require.NoError(t, err)
	assert.Equal(t, "user data", string(data))

	// Temp files are gone.
	_, err = files.Stat("minecraft/remote_manifest.json")
	assert.True(t, os.IsNotExist(err))
	_, err = files.Stat("minecraft/pack.zip")
	assert.True(t, os.IsNotExist(err))
}

func TestSyncManifestDownloadFailureFatal(t *testing.T) {
	files := memfs.New()
	s := newSyncer(files, &fetchMap{files: files})

	v, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	assert.Error(t, err)
	assert.Equal(t, "1.0.0", v)
}

func TestSyncMalformedManifestFatal(t *testing.T) {
	files := memfs.New()
	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{not json`),
	}}
	s := newSyncer(files, fetch)

	_, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	assert.Error(t, err)
}

func TestSyncMissingVersionDefaults(t *testing.T) {
	files := memfs.New()
	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{}`),
		"https://x/pack":     packZip(t, map[string]string{"mods/a.jar": "a"}),
	}}
	s := newSyncer(files, fetch)

	// Local version 0.0.0 matches the default, so nothing happens.
	v, err := s.Sync("https://x/pack", "https://x/manifest", DefaultVersion, "minecraft")
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, v)
	assert.Len(t, fetch.calls, 1)
}

func TestSyncPackDownloadFailureFatal(t *testing.T) {
	files := memfs.New()
	require.NoError(t, util.WriteFile(files, "minecraft/mods/old.jar", []byte("old"), 0644))

	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{"version": "2.0.0"}`),
	}}
	s := newSyncer(files, fetch)

	v, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	assert.Error(t, err)
	// The reported version stays local so the next run retries.
	assert.Equal(t, "1.0.0", v)
}

func TestSyncExtractFailureRemovesArchive(t *testing.T) {
	files := memfs.New()
	fetch := &fetchMap{files: files, payloads: map[string][]byte{
		"https://x/manifest": []byte(`{"version": "2.0.0"}`),
		"https://x/pack":     []byte("not a zip"),
	}}
	s := newSyncer(files, fetch)

	_, err := s.Sync("https://x/pack", "https://x/manifest", "1.0.0", "minecraft")
	assert.Error(t, err)
	_, err = files.Stat("minecraft/pack.zip")
	assert.True(t, os.IsNotExist(err))
}
