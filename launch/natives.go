package launch

import (
	"github.com/go-git/go-billy/v5"

	"github.com/flurrymoe/purrlauncher/manifest"
)

// maybeFetchNatives downloads and extracts the library's native jar
// for the current OS into <gameDir>/natives. It only acts when the
// natives directory is missing or empty, so an already populated
// directory makes repeated launches skip the download entirely.
// Failures are logged and swallowed: a missing native surfaces later
// as a JVM startup failure, which is an accepted degradation.
func (r *Resolver) maybeFetchNatives(lib manifest.Library, gameDir string) {
	if r.Fetch == nil || r.Expand == nil {
		return
	}
	classifier, ok := lib.Natives[r.OS]
	if !ok {
		return
	}
	art, ok := lib.Downloads.Classifiers[classifier]
	if !ok || art.URL == "" {
		return
	}

	nativesDir := r.Files.Join(gameDir, "natives")
	if populated(r.Files, nativesDir) {
		return
	}

	tmp := r.Files.Join(gameDir, "temp_natives.jar")
	r.Log.Info().Msgf("downloading natives from %s", art.URL)
	if err := r.Fetch.DownloadFile(art.URL, tmp); err != nil {
		r.Log.Warn().Err(err).Msgf("download natives %q", lib.Name)
		return
	}
	r.Log.Info().Msg("extracting natives")
	if err := r.Expand.Extract(tmp, nativesDir); err != nil {
		r.Log.Warn().Err(err).Msgf("extract natives %q", lib.Name)
		return
	}
	if err := r.Files.Remove(tmp); err != nil {
		r.Log.Warn().Err(err).Msgf("remove %q", tmp)
	}
}

func populated(files billy.Filesystem, dir string) bool {
	fis, err := files.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(fis) > 0
}
