package main

import (
	"context"
	"flag"
	"net/http"
	"runtime"

	"github.com/google/subcommands"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/flurrymoe/purrlauncher/archive"
	"github.com/flurrymoe/purrlauncher/fetcher"
	"github.com/flurrymoe/purrlauncher/jre"
	"github.com/flurrymoe/purrlauncher/packsync"
)

type SyncCommand struct {
	WithJava bool
}

func (*SyncCommand) Name() string     { return "sync" }
func (*SyncCommand) Synopsis() string { return "update the pack without launching" }
func (*SyncCommand) Usage() string {
	return `Usage: purrlauncher sync [-java]

	Updates the local pack content when the remote manifest advertises
	a different version. With -java the bundled Java runtime is also
	installed if missing. The game is not started.

Flags:
`
}

func (cmd *SyncCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.WithJava, "java", false, "also install the Java runtime if missing")
}

func (cmd *SyncCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := loadSettings()
	if !ok {
		return subcommands.ExitFailure
	}

	logger, closeLog := newLogger(s.Debug, s.LogFile)
	defer closeLog()

	workfs := osfs.New(".")
	if err := workfs.MkdirAll(s.GameDir, 0755); err != nil {
		logger.Error().Err(err).Msgf("create %q", s.GameDir)
		return subcommands.ExitFailure
	}

	dl := &fetcher.Fetcher{
		Files:  workfs,
		Cache:  memfs.New(),
		Client: &http.Client{},
		Log:    logger,
	}
	ex := &archive.Extractor{Files: workfs, Log: logger}

	if cmd.WithJava {
		in := &jre.Installer{
			Files:  workfs,
			Fetch:  dl,
			Expand: ex,
			OS:     runtime.GOOS,
			Log:    logger,
		}
		javaPath, err := in.Ensure(s.JavaPath, s.JREURL)
		if err != nil {
			logger.Error().Err(err).Msg("ensure java runtime")
			return subcommands.ExitFailure
		}
		s.JavaPath = javaPath
		s.JavaReady = true
	}

	sy := &packsync.Syncer{Files: workfs, Fetch: dl, Expand: ex, Log: logger}
	version, err := sy.Sync(s.PackURL, s.PackManifestURL, s.PackVersion, s.GameDir)
	if err != nil {
		logger.Error().Err(err).Msg("update pack")
		return subcommands.ExitFailure
	}
	s.PackVersion = version

	if err := saveSettings(s); err != nil {
		logger.Error().Err(err).Msg("save settings")
		return subcommands.ExitFailure
	}
	logger.Info().Msgf("pack at %s", s.PackVersion)
	return subcommands.ExitSuccess
}
