package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/flurrymoe/purrlauncher/settings"
)

func cacheDir(p string) (string, error) {
	c, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, p), nil
}

func makeCache(p string) (string, error) {
	c, err := cacheDir(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c, 0700); err != nil {
		return "", err
	}
	return c, nil
}

func newDiagWr(p *hclparse.Parser) (diagWr hcl.DiagnosticWriter, color bool) {
	files := p.Files()
	stderr := os.Stderr
	fd := int(stderr.Fd())
	istty, color := fdinfo(fd)
	if !istty {
		diagWr := hcl.NewDiagnosticTextWriter(stderr, files, 80, color)
		return diagWr, color
	}
	var width uint
	if w, _, err := terminal.GetSize(fd); err != nil {
		log.Printf("get term size: %+v", err)
	} else if w >= 0 {
		width = uint(w)
	} else {
		width = 80
	}
	return hcl.NewDiagnosticTextWriter(stderr, files, width, color), color
}

func fdinfo(fd int) (istty, color bool) {
	istty = terminal.IsTerminal(fd)
	if istty {
		color = true
	}
	// See https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color = false
	}
	return
}

// loadSettings reads launcher.hcl next to the binary. A missing file
// yields the defaults; a malformed one prints diagnostics and fails.
func loadSettings() (settings.Settings, bool) {
	src, err := robustio.ReadFile(settings.FileName)
	if err != nil {
		if os.IsNotExist(err) {
			return settings.Default(), true
		}
		log.Printf("read %q: %+v", settings.FileName, err)
		return settings.Default(), false
	}

	s, diags := settings.Decode(src, settings.FileName)
	if len(diags) > 0 {
		parser := hclparse.NewParser()
		// Re-parse so the diagnostic writer has source context.
		parser.ParseHCL(src, settings.FileName)
		diagWr, _ := newDiagWr(parser)
		if err := diagWr.WriteDiagnostics(diags); err != nil {
			log.Printf("write diags: %+v", err)
		}
	}
	return s, !diags.HasErrors()
}

func saveSettings(s settings.Settings) error {
	return renameio.WriteFile(settings.FileName, s.Encode(), 0644)
}

// newLogger tees human-readable console output with the append-only
// launcher.log file.
func newLogger(debug bool, logFile string) (zerolog.Logger, func()) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	w := io.Writer(console)
	closeFn := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			log.Printf("open %q: %+v", logFile, err)
		} else {
			w = io.MultiWriter(console, f)
			closeFn = func() {
				if err := f.Close(); err != nil {
					log.Printf("close %q: %+v", logFile, err)
				}
			}
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closeFn
}

// promptToken asks for the auth token on stdin and trims the
// surrounding whitespace pasted tokens tend to carry.
func promptToken() (string, error) {
	fmt.Fprint(os.Stderr, "Enter auth token: ")
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
