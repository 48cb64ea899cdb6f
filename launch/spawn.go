package launch

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

// Spawner issues the final java invocation referencing the argument file.
type Spawner struct {
	Log zerolog.Logger
}

// CommandLine builds the argv for the game process: the java
// executable followed by a single @file reference.
func CommandLine(javaExe, argFile string) []string {
	return []string{javaExe, "@" + argFile}
}

// ConsoleExecutable picks the executable for the debug flag: the
// plain java binary keeps a console attached, javaw (Windows only)
// detaches from it.
func ConsoleExecutable(javaPath string, debug bool) string {
	if debug || runtime.GOOS != "windows" {
		return javaPath
	}
	dir := filepath.Dir(javaPath)
	return filepath.Join(dir, "javaw"+filepath.Ext(javaPath))
}

// Spawn starts the game process. Debug mode runs it in the foreground
// with the console attached; otherwise the child is started detached
// and released so the launcher can exit.
func (s *Spawner) Spawn(javaPath, argFile string, debug bool) error {
	exe := ConsoleExecutable(javaPath, debug)
	argv := CommandLine(exe, argFile)
	s.Log.Info().Msgf("launching: %s %s", argv[0], argv[1])

	cmd := exec.Command(argv[0], argv[1:]...)
	if debug {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
