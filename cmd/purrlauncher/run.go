package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/subcommands"

	"github.com/akrylysov/pogreb"
	"github.com/akrylysov/pogreb/fs"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/flurrymoe/purrlauncher/archive"
	"github.com/flurrymoe/purrlauncher/auth"
	"github.com/flurrymoe/purrlauncher/fetcher"
	"github.com/flurrymoe/purrlauncher/jre"
	"github.com/flurrymoe/purrlauncher/launch"
	"github.com/flurrymoe/purrlauncher/packsync"
	"github.com/flurrymoe/purrlauncher/plugins"
)

// defaultAuthlibURL is used when authlib_url is not configured.
const defaultAuthlibURL = "https://authlib-injector.yushi.moe/artifact/53/authlib-injector-1.2.5.jar"

const pluginsDirName = "plugins"

type RunCommand struct {
	DisableCache bool
	SkipSync     bool
}

func (*RunCommand) Name() string     { return "run" }
func (*RunCommand) Synopsis() string { return "sync the pack and launch the game" }
func (*RunCommand) Usage() string {
	return `Usage: purrlauncher run [-nocache] [-nosync]

	Performs a full launch: authenticates against the configured API,
	updates the pack when the remote manifest advertises a new version,
	bootstraps a Java runtime if none is configured, and starts the
	game. Settings are read from and written back to launcher.hcl.

Flags:
`
}

func (cmd *RunCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.DisableCache, "nocache", false, "disable filesystem cache")
	f.BoolVar(&cmd.SkipSync, "nosync", false, "skip the pack update step")
}

func (cmd *RunCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := loadSettings()
	if !ok {
		return subcommands.ExitFailure
	}

	logger, closeLog := newLogger(s.Debug, s.LogFile)
	defer closeLog()
	logger.Info().Msgf("%s version %s", programName, launcherVersion)

	if s.AuthToken == "" {
		token, err := promptToken()
		if err != nil {
			logger.Error().Err(err).Msg("read auth token")
			return subcommands.ExitFailure
		}
		if token == "" {
			logger.Error().Msg("no auth token provided")
			return subcommands.ExitFailure
		}
		s.AuthToken = token
		if err := saveSettings(s); err != nil {
			logger.Warn().Err(err).Msg("save settings")
		} else {
			logger.Info().Msg("auth token saved")
		}
	}

	workfs := osfs.New(".")
	if err := workfs.MkdirAll(s.GameDir, 0755); err != nil {
		logger.Error().Err(err).Msgf("create %q", s.GameDir)
		return subcommands.ExitFailure
	}

	var cachePath string
	if !cmd.DisableCache {
		var err error
		cachePath, err = makeCache(programName)
		if err != nil {
			logger.Error().Err(err).Msg("make cache")
			return subcommands.ExitFailure
		}
	}

	var cachefs billy.Filesystem
	if !cmd.DisableCache {
		cachefs = osfs.New(cachePath)
	} else {
		cachefs = memfs.New()
	}

	var db *pogreb.DB
	if !cmd.DisableCache {
		var err error
		db, err = pogreb.Open(filepath.Join(cachePath, "db"), nil)
		if err != nil {
			logger.Error().Err(err).Msg("open pogreb")
			return subcommands.ExitFailure
		}
	} else {
		// BUG pogreb.Open always calls os.MkdirAll
		var err error
		db, err = pogreb.Open(".", &pogreb.Options{
			FileSystem: fs.Mem,
		})
		if err != nil {
			panic(err)
		}
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("close pogreb")
		}
	}()

	dl := &fetcher.Fetcher{
		Files:    workfs,
		Cache:    cachefs,
		Client:   &http.Client{},
		Database: db,
		Log:      logger,
	}
	ex := &archive.Extractor{Files: workfs, Log: logger}

	pm := &plugins.Manager{Files: workfs, Fetch: dl, Log: logger}
	pm.Sync(s.PluginsURL, pluginsDirName)

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

	ac := &auth.Client{API: s.APIURL, HTTP: dl, Log: logger}
	sess, err := ac.Authenticate(s.AuthToken)
	if err != nil {
		logger.Error().Err(err).Msg("authenticate")
		return subcommands.ExitFailure
	}
	s.Username = sess.Username
	s.UUID = sess.UUID

	if !cmd.SkipSync {
		sy := &packsync.Syncer{Files: workfs, Fetch: dl, Expand: ex, Log: logger}
		version, err := sy.Sync(s.PackURL, s.PackManifestURL, s.PackVersion, s.GameDir)
		if err != nil {
			logger.Error().Err(err).Msg("update pack")
			return subcommands.ExitFailure
		}
		s.PackVersion = version
	}

	agentPath := workfs.Join(s.GameDir, "libraries", launch.AgentJarName)
	if _, err := workfs.Stat(agentPath); os.IsNotExist(err) {
		agentURL := s.AuthlibURL
		if agentURL == "" {
			agentURL = defaultAuthlibURL
		}
		logger.Info().Msgf("downloading authlib-injector from %s", agentURL)
		if err := dl.DownloadFile(agentURL, agentPath); err != nil {
			logger.Error().Err(err).Msg("download authlib-injector")
			return subcommands.ExitFailure
		}
	}

	if err := saveSettings(s); err != nil {
		logger.Warn().Err(err).Msg("save settings")
	}
	logger.Info().Msgf("pack at %s, configuration saved", s.PackVersion)

	l := &launch.Launcher{
		Files:  workfs,
		OS:     runtime.GOOS,
		Fetch:  dl,
		Expand: ex,
		Log:    logger,
	}
	opts := launch.Options{
		GameDir:         s.GameDir,
		Version:         s.GameVersion,
		Username:        sess.Username,
		UUID:            sess.UUID,
		AccessToken:     sess.AccessToken,
		UserType:        sess.UserType,
		APIURL:          s.APIURL,
		MaxRAM:          s.MaxRAM,
		Prefetched:      s.PrefetchedProfile,
		JavaPath:        s.JavaPath,
		Debug:           s.Debug,
		LauncherVersion: launcherVersion,
	}
	if err := l.Run(opts); err != nil {
		logger.Error().Err(err).Msg("launch")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
