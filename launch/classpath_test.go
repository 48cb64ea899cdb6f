package launch

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flurrymoe/purrlauncher/manifest"
)

func touch(t *testing.T, files billy.Filesystem, fpath string) {
	t.Helper()
	require.NoError(t, util.WriteFile(files, fpath, []byte("jar"), 0644))
}

func windowsOnly() []manifest.Rule {
	return []manifest.Rule{
		{Action: manifest.ActionAllow, OS: &manifest.OSConstraint{Name: "windows"}},
	}
}

func TestClasspathOrderAndRoundTrip(t *testing.T) {
	files := memfs.New()
	touch(t, files, "minecraft/libraries/g/x/a/1.0/a-1.0.jar")
	touch(t, files, "minecraft/libraries/g/x/b/2.0/b-2.0.jar")
	touch(t, files, "minecraft/versions/Forge 1.20.1/Forge 1.20.1.jar")

	m := &manifest.Manifest{
		Libraries: []manifest.Library{
			{Name: "g.x:a:1.0", Downloads: manifest.Downloads{Artifact: &manifest.Artifact{}}},
			{Name: "g.x:b:2.0", Downloads: manifest.Downloads{Artifact: &manifest.Artifact{}}},
		},
	}

	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	entries, err := res.Classpath(m, "minecraft", "Forge 1.20.1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0], "a-1.0.jar")
	assert.Contains(t, entries[1], "b-2.0.jar")
	assert.Contains(t, entries[2], "Forge 1.20.1.jar")

	require.NoError(t, res.WriteClasspath(entries, "minecraft/classpath.txt"))
	cp, err := ReadClasspath(files, "minecraft/classpath.txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(entries, ";"), cp)
	assert.False(t, strings.HasSuffix(cp, ";"))
}

func TestClasspathRuleGating(t *testing.T) {
	files := memfs.New()
	touch(t, files, "minecraft/libraries/g/x/a/1.0/a-1.0.jar")
	touch(t, files, "minecraft/versions/v/v.jar")

	m := &manifest.Manifest{
		Libraries: []manifest.Library{
			{
				Name:      "g.x:a:1.0",
				Rules:     windowsOnly(),
				Downloads: manifest.Downloads{Artifact: &manifest.Artifact{}},
			},
		},
	}

	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	entries, err := res.Classpath(m, "minecraft", "v")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	res.OS = "linux"
	entries, err = res.Classpath(m, "minecraft", "v")
	require.NoError(t, err)
	assert.Len(t, entries, 1) // client jar only
}

func TestClasspathSkipsMissingLibrary(t *testing.T) {
	files := memfs.New()
	touch(t, files, "minecraft/versions/v/v.jar")

	m := &manifest.Manifest{
		Libraries: []manifest.Library{
			{Name: "g.x:gone:1.0", Downloads: manifest.Downloads{Artifact: &manifest.Artifact{}}},
		},
	}

	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	entries, err := res.Classpath(m, "minecraft", "v")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClasspathSkipsDownloadOnly(t *testing.T) {
	files := memfs.New()
	touch(t, files, "minecraft/libraries/g/x/a/1.0/a-1.0.jar")
	touch(t, files, "minecraft/versions/v/v.jar")

	m := &manifest.Manifest{
		Libraries: []manifest.Library{
			{
				Name:         "g.x:a:1.0",
				DownloadOnly: true,
				Downloads:    manifest.Downloads{Artifact: &manifest.Artifact{}},
			},
		},
	}

	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	entries, err := res.Classpath(m, "minecraft", "v")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClasspathMissingClientJarFatal(t *testing.T) {
	files := memfs.New()
	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	_, err := res.Classpath(&manifest.Manifest{}, "minecraft", "v")
	assert.ErrorIs(t, err, ErrMissingClientJar)
}

func TestClasspathExplicitArtifactPath(t *testing.T) {
	files := memfs.New()
	touch(t, files, "minecraft/libraries/custom/a.jar")
	touch(t, files, "minecraft/versions/v/v.jar")

	m := &manifest.Manifest{
		Libraries: []manifest.Library{
			{
				Name: "g.x:a:1.0",
				Downloads: manifest.Downloads{
					Artifact: &manifest.Artifact{Path: "custom/a.jar"},
				},
			},
		},
	}

	res := Resolver{Files: files, OS: "windows", Log: zerolog.Nop()}
	entries, err := res.Classpath(m, "minecraft", "v")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "custom/a.jar")
}
