package launch

import "strings"

// Launcher identity reported through the placeholder map.
const (
	LauncherName = "PurrLauncher"

	versionType      = "release"
	resolutionWidth  = "854"
	resolutionHeight = "480"
)

// Loader coordinates baked into the pack's version manifest templates.
const (
	forgeVersion = "47.4.6"
	forgeGroup   = "net.minecraftforge"
	mcVersion    = "1.20.1"
	mcpVersion   = "20230612.114412"
)

// ClasspathSeparator joins classpath entries in classpath.txt and in
// the classpath_separator placeholder.
const ClasspathSeparator = ";"

// Substitute expands ${key} spans in s from vars in a single forward
// pass. Replacement text is never re-scanned, so values containing
// literal ${ sequences stay as-is. Unknown keys leave the span
// untouched; an unterminated ${ leaves the remainder unchanged.
func Substitute(s string, vars map[string]string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		j := strings.Index(s[i:], "}")
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		j += i
		key := s[i+2 : j]
		if v, ok := vars[key]; ok {
			b.WriteString(s[:i])
			b.WriteString(v)
		} else {
			b.WriteString(s[:j+1])
		}
		s = s[j+1:]
	}
}

// Context carries the per-launch values referenced by argument
// templates. It is built once per launch and read-only afterward.
type Context struct {
	Username    string
	UUID        string
	AccessToken string
	UserType    string

	Version    string
	AssetIndex string

	GameDir    string
	AssetsRoot string
	NativesDir string
	LibraryDir string

	Classpath string

	LauncherVersion string
}

// Placeholders returns the substitution map for argument templates.
// Every key a manifest can reference must be present here; tokens
// naming a missing key are left unexpanded by Substitute.
func (c Context) Placeholders() map[string]string {
	return map[string]string{
		"auth_player_name":  c.Username,
		"version_name":      c.Version,
		"game_directory":    c.GameDir,
		"assets_root":       c.AssetsRoot,
		"assets_index_name": c.AssetIndex,
		"auth_uuid":         c.UUID,
		"auth_access_token": c.AccessToken,
		"user_type":         c.UserType,
		"version_type":      versionType,
		"resolution_width":  resolutionWidth,
		"resolution_height": resolutionHeight,
		"classpath":         c.Classpath,
		"natives_directory": c.NativesDir,
		"launcher_name":     LauncherName,
		"launcher_version":  c.LauncherVersion,
		"clientid":          "",
		"auth_xuid":         "",

		"quickPlayPath":         "",
		"quickPlaySingleplayer": "",
		"quickPlayMultiplayer":  "",
		"quickPlayRealms":       "",

		"fml.forgeVersion": forgeVersion,
		"fml.forgeGroup":   forgeGroup,
		"fml.mcVersion":    mcVersion,
		"fml.mcpVersion":   mcpVersion,

		"library_directory":   c.LibraryDir,
		"classpath_separator": ClasspathSeparator,
	}
}
