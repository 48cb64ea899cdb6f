// Package jre bootstraps a private Java runtime when the settings do
// not name a working one. The archive is downloaded once, extracted
// next to the launcher, and the discovered java binary is handed back
// for the settings to persist.
package jre

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

// DefaultArchiveURL is the Temurin 17 build the launcher ships with
// on Windows.
const DefaultArchiveURL = "https://github.com/adoptium/temurin17-binaries/releases/download/jdk-17.0.16%2B8/OpenJDK17U-jdk_x64_windows_hotspot_17.0.16_8.zip"

const (
	archiveTempName = "jdk.zip"
	installDir      = "java17"
)

var ErrNoJavaBinary = errors.New("no java binary in extracted runtime")

// Fetcher downloads through the content-addressed cache: the runtime
// archive is large and identical across reinstalls.
type Fetcher interface {
	DownloadCached(rawurl, fpath string) error
}

type Unarchiver interface {
	Extract(archivePath, destDir string) error
}

type Installer struct {
	Files  billy.Filesystem
	Fetch  Fetcher
	Expand Unarchiver
	OS     string
	Log    zerolog.Logger
}

// Ensure returns a usable java path. When javaPath already points at
// an existing binary it is returned untouched; otherwise the runtime
// archive is downloaded from archiveURL and extracted.
func (in *Installer) Ensure(javaPath, archiveURL string) (string, error) {
	if javaPath != "" {
		if _, err := in.Files.Stat(javaPath); err == nil {
			return javaPath, nil
		}
		in.Log.Warn().Msgf("configured java %q is missing, reinstalling", javaPath)
	}
	if archiveURL == "" {
		archiveURL = DefaultArchiveURL
	}

	in.Log.Info().Msgf("downloading java runtime from %s", archiveURL)
	if err := in.Fetch.DownloadCached(archiveURL, archiveTempName); err != nil {
		return "", fmt.Errorf("download java runtime: %w", err)
	}
	in.Log.Info().Msg("extracting java runtime")
	if err := in.Expand.Extract(archiveTempName, installDir); err != nil {
		return "", fmt.Errorf("extract java runtime: %w", err)
	}
	if err := in.Files.Remove(archiveTempName); err != nil && !os.IsNotExist(err) {
		in.Log.Warn().Err(err).Msgf("remove %q", archiveTempName)
	}

	return in.locate()
}

// locate finds bin/java under the single top-level directory the
// runtime archive contains.
func (in *Installer) locate() (string, error) {
	entries, err := in.Files.ReadDir(installDir)
	if err != nil {
		return "", err
	}
	exe := "java"
	if in.OS == "windows" {
		exe = "java.exe"
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fpath := in.Files.Join(installDir, entry.Name(), "bin", exe)
		if _, err := in.Files.Stat(fpath); err == nil {
			return fpath, nil
		}
	}
	return "", ErrNoJavaBinary
}
