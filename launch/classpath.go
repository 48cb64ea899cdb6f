// Package launch interprets a version manifest into a resolved
// classpath, a populated natives directory and a fully substituted
// argument file, then spawns the game process.
package launch

import (
	"errors"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"

	"github.com/flurrymoe/purrlauncher/manifest"
)

var ErrMissingClientJar = errors.New("missing client jar")

// Fetcher downloads a URL to a destination path, retrying internally
// and leaving no partial file behind on failure.
type Fetcher interface {
	DownloadFile(rawurl, fpath string) error
}

// Unarchiver expands an archive into a directory.
type Unarchiver interface {
	Extract(archivePath, destDir string) error
}

// Resolver walks the manifest library list and produces the classpath
// for the current OS. When Fetch and Expand are set it also triggers
// native extraction for libraries carrying an OS native classifier.
type Resolver struct {
	Files  billy.Filesystem
	OS     string
	Fetch  Fetcher
	Expand Unarchiver
	Log    zerolog.Logger
}

// Classpath resolves the manifest libraries into on-disk paths in
// manifest order, with the client jar appended last. Libraries whose
// resolved file is missing are logged and skipped; a missing client
// jar fails the launch.
func (r *Resolver) Classpath(m *manifest.Manifest, gameDir, version string) ([]string, error) {
	libDir := r.Files.Join(gameDir, "libraries")

	var entries []string
	for _, lib := range m.Libraries {
		if !manifest.Eval(lib.Rules, r.OS) {
			continue
		}
		if lib.Downloads.Artifact != nil && !lib.DownloadOnly {
			if p := lib.ArtifactPath(); p != "" {
				local := r.Files.Join(libDir, p)
				if _, err := r.Files.Stat(local); err == nil {
					entries = append(entries, local)
				} else {
					r.Log.Warn().Msgf("missing library: %s", local)
				}
			}
		}
		r.maybeFetchNatives(lib, gameDir)
	}

	client := r.Files.Join(gameDir, "versions", version, version+".jar")
	if _, err := r.Files.Stat(client); err != nil {
		r.Log.Error().Msgf("missing client jar: %s", client)
		return nil, ErrMissingClientJar
	}
	entries = append(entries, client)
	return entries, nil
}

// WriteClasspath persists entries to fpath as a single ;-joined line.
func (r *Resolver) WriteClasspath(entries []string, fpath string) error {
	cp := strings.Join(entries, ClasspathSeparator)
	return util.WriteFile(r.Files, fpath, []byte(cp), 0644)
}

// ReadClasspath reads back a classpath file written by WriteClasspath.
func ReadClasspath(files billy.Filesystem, fpath string) (string, error) {
	data, err := util.ReadFile(files, fpath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
