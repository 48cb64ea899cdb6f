package launch

import (
	"bytes"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ArgFileName is the java @argument-file consumed by the spawned process.
const ArgFileName = "launch_args.txt"

// WriteArgFile serializes the final argument vector, one token per
// line: the -Xmx flag when maxRAM is set, the JVM arguments, the main
// class, then the game arguments. Tokens containing a space are
// wrapped in double quotes; embedded quotes and backslashes are not
// escaped, a known limitation of the @file format used here.
func WriteArgFile(files billy.Basic, fpath, maxRAM string, jvmArgs []string, mainClass string, gameArgs []string) error {
	var buf bytes.Buffer
	if maxRAM != "" {
		writeArg(&buf, "-Xmx"+maxRAM)
	}
	for _, a := range jvmArgs {
		writeArg(&buf, a)
	}
	writeArg(&buf, mainClass)
	for _, a := range gameArgs {
		writeArg(&buf, a)
	}
	return util.WriteFile(files, fpath, buf.Bytes(), 0644)
}

func writeArg(buf *bytes.Buffer, arg string) {
	if strings.Contains(arg, " ") {
		arg = `"` + arg + `"`
	}
	buf.WriteString(arg)
	buf.WriteByte('\n')
}
