package launch

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/flurrymoe/purrlauncher/manifest"
)

// ClasspathFileName is re-read by the launch step after the resolver
// writes it, so a partially upgraded install can still be inspected.
const ClasspathFileName = "classpath.txt"

// Options carries the per-launch inputs assembled by the caller.
type Options struct {
	GameDir string
	Version string

	Username    string
	UUID        string
	AccessToken string
	UserType    string

	APIURL     string
	MaxRAM     string
	Prefetched string

	JavaPath string
	Debug    bool

	LauncherVersion string
}

// Launcher ties the manifest interpreter together: classpath
// resolution, argument synthesis, argument file serialization and the
// process spawn, strictly in that order.
type Launcher struct {
	Files  billy.Filesystem
	OS     string
	Fetch  Fetcher
	Expand Unarchiver
	Log    zerolog.Logger
}

// Run performs a full launch. The version manifest is parsed fresh
// from disk on every call and owns nothing beyond this invocation.
func (l *Launcher) Run(opts Options) error {
	jsonPath := l.Files.Join(opts.GameDir, "versions", opts.Version, opts.Version+".json")
	m, err := manifest.Load(l.Files, jsonPath)
	if err != nil {
		return fmt.Errorf("load version manifest %q: %w", jsonPath, err)
	}

	res := Resolver{Files: l.Files, OS: l.OS, Fetch: l.Fetch, Expand: l.Expand, Log: l.Log}
	entries, err := res.Classpath(m, opts.GameDir, opts.Version)
	if err != nil {
		return err
	}
	cpPath := l.Files.Join(opts.GameDir, ClasspathFileName)
	if err := res.WriteClasspath(entries, cpPath); err != nil {
		return fmt.Errorf("write classpath: %w", err)
	}
	cp, err := ReadClasspath(l.Files, cpPath)
	if err != nil {
		return fmt.Errorf("read classpath: %w", err)
	}

	ctx := Context{
		Username:        opts.Username,
		UUID:            opts.UUID,
		AccessToken:     opts.AccessToken,
		UserType:        opts.UserType,
		Version:         opts.Version,
		AssetIndex:      m.AssetIndexID(),
		GameDir:         opts.GameDir,
		AssetsRoot:      l.Files.Join(opts.GameDir, "assets"),
		NativesDir:      l.Files.Join(opts.GameDir, "natives"),
		LibraryDir:      l.Files.Join(opts.GameDir, "libraries"),
		Classpath:       cp,
		LauncherVersion: opts.LauncherVersion,
	}
	vars := ctx.Placeholders()

	syn := Synthesizer{OS: l.OS, Log: l.Log}
	jvmArgs := syn.JVMArgs(m, vars)
	jvmArgs = syn.AddAuthAgent(jvmArgs, l.Files, opts.GameDir, opts.APIURL, opts.AccessToken, opts.Prefetched)
	gameArgs := syn.GameArgs(m, vars)

	argFile := l.Files.Join(opts.GameDir, ArgFileName)
	if err := WriteArgFile(l.Files, argFile, opts.MaxRAM, jvmArgs, m.MainClassName(), gameArgs); err != nil {
		return fmt.Errorf("write launch args: %w", err)
	}

	sp := Spawner{Log: l.Log}
	return sp.Spawn(opts.JavaPath, argFile, opts.Debug)
}
