package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/google/subcommands"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/flurrymoe/purrlauncher/auth"
	"github.com/flurrymoe/purrlauncher/fetcher"
)

type LoginCommand struct {
	Token string
}

func (*LoginCommand) Name() string     { return "login" }
func (*LoginCommand) Synopsis() string { return "validate a token and store the session" }
func (*LoginCommand) Usage() string {
	return `Usage: purrlauncher login [-token value]

	Validates the auth token against the configured API and stores the
	token together with the resolved username and UUID in launcher.hcl.
	Without -token the token is read from stdin.

Flags:
`
}

func (cmd *LoginCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.Token, "token", "", "auth token to validate")
}

func (cmd *LoginCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := loadSettings()
	if !ok {
		return subcommands.ExitFailure
	}

	logger, closeLog := newLogger(s.Debug, s.LogFile)
	defer closeLog()

	token := cmd.Token
	if token == "" {
		var err error
		token, err = promptToken()
		if err != nil {
			logger.Error().Err(err).Msg("read auth token")
			return subcommands.ExitFailure
		}
	}
	if token == "" {
		logger.Error().Msg("no auth token provided")
		return subcommands.ExitFailure
	}

	dl := &fetcher.Fetcher{
		Files:  osfs.New("."),
		Cache:  memfs.New(),
		Client: &http.Client{},
		Log:    logger,
	}
	ac := &auth.Client{API: s.APIURL, HTTP: dl, Log: logger}
	sess, err := ac.Authenticate(token)
	if err != nil {
		logger.Error().Err(err).Msg("authenticate")
		return subcommands.ExitFailure
	}

	s.AuthToken = token
	s.Username = sess.Username
	s.UUID = sess.UUID
	if err := saveSettings(s); err != nil {
		logger.Error().Err(err).Msg("save settings")
		return subcommands.ExitFailure
	}
	logger.Info().Msgf("logged in as %s (%s)", sess.Username, sess.UserType)
	return subcommands.ExitSuccess
}
