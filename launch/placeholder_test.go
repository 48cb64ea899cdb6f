package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	vars := map[string]string{
		"auth_player_name": "Steve",
		"classpath":        "a.jar;b.jar",
	}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain passthrough", "--username", "--username"},
		{"known key", "${auth_player_name}", "Steve"},
		{"unknown key kept literally", "${unknown_key}", "${unknown_key}"},
		{"mid-string", "-cp=${classpath}!", "-cp=a.jar;b.jar!"},
		{"unknown then known", "${nope}/${auth_player_name}", "${nope}/Steve"},
		{"unterminated span stops scan", "x${auth_player_name", "x${auth_player_name"},
		{"empty key unknown", "${}", "${}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, vars))
		})
	}
}

func TestSubstituteNoSecondPass(t *testing.T) {
	// A substituted value containing a ${ sequence must not be
	// expanded again.
	vars := map[string]string{
		"a": "${b}",
		"b": "boom",
	}
	assert.Equal(t, "${b}", Substitute("${a}", vars))
}

func TestSubstituteIdempotentWithoutSpans(t *testing.T) {
	s := "no placeholders here"
	assert.Equal(t, s, Substitute(s, map[string]string{"x": "y"}))
}

func TestPlaceholdersCoverManifestKeys(t *testing.T) {
	ctx := Context{
		Username:        "Steve",
		UUID:            "uuid",
		AccessToken:     "token",
		UserType:        "mojang",
		Version:         "Forge 1.20.1",
		AssetIndex:      "5",
		GameDir:         "minecraft",
		AssetsRoot:      "minecraft/assets",
		NativesDir:      "minecraft/natives",
		LibraryDir:      "minecraft/libraries",
		Classpath:       "a.jar",
		LauncherVersion: "2.4.104",
	}
	vars := ctx.Placeholders()

	for _, key := range []string{
		"auth_player_name", "version_name", "game_directory",
		"assets_root", "assets_index_name", "auth_uuid",
		"auth_access_token", "user_type", "version_type",
		"resolution_width", "resolution_height", "classpath",
		"natives_directory", "launcher_name", "launcher_version",
		"clientid", "auth_xuid", "quickPlayPath",
		"quickPlaySingleplayer", "quickPlayMultiplayer",
		"quickPlayRealms", "fml.forgeVersion", "fml.forgeGroup",
		"fml.mcVersion", "fml.mcpVersion", "library_directory",
		"classpath_separator",
	} {
		_, ok := vars[key]
		assert.True(t, ok, "missing placeholder %q", key)
	}
	assert.Equal(t, "Steve", vars["auth_player_name"])
	assert.Equal(t, ";", vars["classpath_separator"])
}
