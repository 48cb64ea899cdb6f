// Package packsync keeps the local game directory in step with the
// remote pack: when the remote manifest advertises a different
// version, a fixed set of pack-owned subtrees is wiped and the pack
// archive is re-extracted over the game directory.
package packsync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
)

// DefaultVersion stands in for a missing version field on either side
// of the comparison.
const DefaultVersion = "0.0.0"

const (
	manifestTempName = "remote_manifest.json"
	archiveTempName  = "pack.zip"
)

// wipeDirs are replaced wholesale on every pack update. User data
// outside these subtrees survives the update.
var wipeDirs = []string{"config", "fancymenu_data", "mods", "shaderpacks"}

// wipeFile is removed so the pack's server list always wins.
const wipeFile = "servers.dat"

type Fetcher interface {
	DownloadFile(rawurl, fpath string) error
}

type Unarchiver interface {
	Extract(archivePath, destDir string) error
}

type Syncer struct {
	Files  billy.Filesystem
	Fetch  Fetcher
	Expand Unarchiver
	Log    zerolog.Logger
}

type remoteManifest struct {
	Version string `json:"version"`
}

// Sync compares localVersion against the remote manifest and updates
// the pack content when they differ. It returns the version the
// caller should persist; on a no-op or failure that is localVersion
// unchanged. There is no partial-completion marker: a sync
// interrupted after the wipe leaves the stored version stale, so the
// next run re-enters the update path and recovers.
func (s *Syncer) Sync(packURL, manifestURL, localVersion, gameDir string) (string, error) {
	if packURL == "" || manifestURL == "" {
		s.Log.Info().Msg("no pack URLs configured, skipping update")
		return localVersion, nil
	}

	tmpManifest := s.Files.Join(gameDir, manifestTempName)
	s.Log.Info().Msgf("downloading remote manifest from %s", manifestURL)
	if err := s.Fetch.DownloadFile(manifestURL, tmpManifest); err != nil {
		return localVersion, fmt.Errorf("fetch remote manifest: %w", err)
	}
	defer s.removeTemp(tmpManifest)

	remoteVersion, err := s.readRemoteVersion(tmpManifest)
	if err != nil {
		return localVersion, fmt.Errorf("parse remote manifest: %w", err)
	}

	if remoteVersion == localVersion {
		s.Log.Info().Msgf("pack is up to date (%s)", localVersion)
		return localVersion, nil
	}

	s.clean(gameDir)

	archivePath := s.Files.Join(gameDir, archiveTempName)
	s.Log.Info().Msgf("downloading updated pack from %s", packURL)
	if err := s.Fetch.DownloadFile(packURL, archivePath); err != nil {
		return localVersion, fmt.Errorf("download pack: %w", err)
	}
	s.Log.Info().Msg("extracting pack")
	if err := s.Expand.Extract(archivePath, gameDir); err != nil {
		s.removeTemp(archivePath)
		return localVersion, fmt.Errorf("extract pack: %w", err)
	}
	s.removeTemp(archivePath)

	s.Log.Info().Msgf("pack updated to %s", remoteVersion)
	return remoteVersion, nil
}

// readRemoteVersion parses the downloaded manifest. An unreadable or
// unparsable document is an error; a merely missing version field
// defaults instead.
func (s *Syncer) readRemoteVersion(fpath string) (string, error) {
	data, err := util.ReadFile(s.Files, fpath)
	if err != nil {
		return "", err
	}
	var m remoteManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", err
	}
	if m.Version == "" {
		return DefaultVersion, nil
	}
	return m.Version, nil
}

// clean wipes the pack-owned subtrees before re-extraction. Per-item
// failures are logged and the remaining items still get removed; the
// following extraction overwrites whatever survived.
func (s *Syncer) clean(gameDir string) {
	serversFile := s.Files.Join(gameDir, wipeFile)
	if _, err := s.Files.Stat(serversFile); err == nil {
		if err := s.Files.Remove(serversFile); err != nil {
			s.Log.Warn().Err(err).Msgf("delete %q", serversFile)
		} else {
			s.Log.Info().Msgf("deleted %s for mandatory overwrite", wipeFile)
		}
	}
	for _, dir := range wipeDirs {
		dirPath := s.Files.Join(gameDir, dir)
		if _, err := s.Files.Stat(dirPath); os.IsNotExist(err) {
			continue
		}
		if err := util.RemoveAll(s.Files, dirPath); err != nil {
			s.Log.Warn().Err(err).Msgf("delete %q", dirPath)
			continue
		}
		s.Log.Info().Msgf("deleted %s folder for mandatory overwrite", dir)
	}
}

func (s *Syncer) removeTemp(fpath string) {
	if err := s.Files.Remove(fpath); err != nil && !os.IsNotExist(err) {
		s.Log.Warn().Err(err).Msgf("remove %q", fpath)
	}
}
