package launch

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArgFile(t *testing.T) {
	files := memfs.New()
	err := WriteArgFile(files, "minecraft/launch_args.txt", "6G",
		[]string{"-Djava.library.path=minecraft/natives", "-Dname=hello world"},
		"net.minecraft.client.main.Main",
		[]string{"--version", "Forge 1.20.1", "--username", "Steve"})
	require.NoError(t, err)

	data, err := util.ReadFile(files, "minecraft/launch_args.txt")
	require.NoError(t, err)
	assert.Equal(t, "-Xmx6G\n"+
		"-Djava.library.path=minecraft/natives\n"+
		"\"-Dname=hello world\"\n"+
		"net.minecraft.client.main.Main\n"+
		"--version\n"+
		"\"Forge 1.20.1\"\n"+
		"--username\n"+
		"Steve\n", string(data))
}

func TestWriteArgFileNoRAM(t *testing.T) {
	files := memfs.New()
	err := WriteArgFile(files, "args.txt", "", nil, "Main", nil)
	require.NoError(t, err)

	data, err := util.ReadFile(files, "args.txt")
	require.NoError(t, err)
	assert.Equal(t, "Main\n", string(data))
}

func TestWriteArgFileQuoting(t *testing.T) {
	files := memfs.New()
	err := WriteArgFile(files, "args.txt", "", []string{"hello world", "noSpace"}, "Main", nil)
	require.NoError(t, err)

	data, err := util.ReadFile(files, "args.txt")
	require.NoError(t, err)
	assert.Equal(t, "\"hello world\"\nnoSpace\nMain\n", string(data))
}
