package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	s, diags := Decode(nil, FileName)
	require.False(t, diags.HasErrors(), diags.Error())

	assert.True(t, s.Debug)
	assert.Equal(t, "6G", s.MaxRAM)
	assert.Equal(t, "minecraft", s.GameDir)
	assert.Equal(t, "Forge 1.20.1", s.GameVersion)
	assert.Equal(t, "0.0.0", s.PackVersion)
	assert.Equal(t, "launcher.log", s.LogFile)
	assert.Empty(t, s.AuthToken)
}

func TestDecodeOverrides(t *testing.T) {
	src := []byte(`
debug = false
max_ram = "8G"
username = "Purr"
auth_token = "tok"
pack_url = "https://x/pack"
pack_manifest_url = "https://x/manifest"
pack_version = "1.2.3"
java_path = "java17/jdk-17.0.16+8/bin/java.exe"
java_ready = true
jre_url = "https://mirror.example/jdk17.zip"
`)
	s, diags := Decode(src, FileName)
	require.False(t, diags.HasErrors(), diags.Error())

	assert.False(t, s.Debug)
	assert.Equal(t, "8G", s.MaxRAM)
	assert.Equal(t, "Purr", s.Username)
	assert.Equal(t, "tok", s.AuthToken)
	assert.Equal(t, "1.2.3", s.PackVersion)
	assert.True(t, s.JavaReady)
	assert.Equal(t, "https://mirror.example/jdk17.zip", s.JREURL)
	// Untouched fields keep defaults.
	assert.Equal(t, "minecraft", s.GameDir)
}

func TestDecodeInvalidRAMRevertsToDefault(t *testing.T) {
	for _, ram := range []string{"lots", "0G", "33G", "100M", "40000M", "G", "-1G"} {
		src := []byte(`max_ram = "` + ram + `"`)
		s, diags := Decode(src, FileName)
		require.False(t, diags.HasErrors(), diags.Error())
		assert.Equal(t, "6G", s.MaxRAM, "input %q", ram)
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	_, diags := Decode([]byte(`max_ram = `), FileName)
	assert.True(t, diags.HasErrors())
}

func TestDecodeUnknownAttribute(t *testing.T) {
	_, diags := Decode([]byte(`no_such_knob = true`), FileName)
	assert.True(t, diags.HasErrors())
}

func TestEncodeRoundTrip(t *testing.T) {
	s := Default()
	s.Username = "Purr"
	s.AuthToken = "tok"
	s.MaxRAM = "8G"
	s.JavaPath = "java17/jdk/bin/java.exe"
	s.JavaReady = true

	out, diags := Decode(s.Encode(), FileName)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, s, out)
}

func TestEncodeOmitsEmptyStrings(t *testing.T) {
	s := Default()
	src := string(s.Encode())
	assert.NotContains(t, src, "auth_token")
	assert.NotContains(t, src, "java_path")
	assert.Contains(t, src, "debug = true")
	assert.Contains(t, src, `max_ram = "6G"`)
}

func TestValidRAM(t *testing.T) {
	valid := []string{"1G", "32G", "6g", "512M", "32768M", "2048m"}
	invalid := []string{"", "0G", "33G", "511M", "32769M", "6", "G", "6GB", "six gigs"}
	for _, v := range valid {
		assert.True(t, ValidRAM(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidRAM(v), v)
	}
}

func TestRedact(t *testing.T) {
	s := Default()
	s.AuthToken = "super-secret"
	s.PrefetchedProfile = "base64blob"

	r := s.Redact()
	assert.NotContains(t, r.AuthToken, "secret")
	assert.NotEqual(t, "base64blob", r.PrefetchedProfile)
	// The original is untouched.
	assert.Equal(t, "super-secret", s.AuthToken)
}
