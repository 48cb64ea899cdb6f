// Package settings owns launcher.hcl: typed decode with defaults,
// validation of the values users tend to break, and a stable encode
// for writing the file back.
package settings

import (
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// FileName is the settings file, looked up next to the launcher.
const FileName = "launcher.hcl"

// DefaultPrefetchedProfile is baked in at build time with ldflags so
// release builds carry the signed profile blob for the auth agent.
var DefaultPrefetchedProfile = ""

type Settings struct {
	JavaPath  string `hcl:"java_path,optional"`
	JavaReady bool   `hcl:"java_ready,optional"`
	JREURL    string `hcl:"jre_url,optional"`

	Username string `hcl:"username,optional"`
	UUID     string `hcl:"uuid,optional"`

	Debug  bool   `hcl:"debug,optional"`
	MaxRAM string `hcl:"max_ram,optional"`

	GameDir     string `hcl:"game_dir,optional"`
	GameVersion string `hcl:"version,optional"`

	PackURL         string `hcl:"pack_url,optional"`
	PackManifestURL string `hcl:"pack_manifest_url,optional"`
	PackVersion     string `hcl:"pack_version,optional"`

	LogFile string `hcl:"log_file,optional"`

	APIURL     string `hcl:"api_url,optional"`
	AuthToken  string `hcl:"auth_token,optional"`
	PluginsURL string `hcl:"plugins_url,optional"`
	AuthlibURL string `hcl:"authlib_url,optional"`

	PrefetchedProfile string `hcl:"prefetched_profile,optional"`
}

func Default() Settings {
	return Settings{
		Debug:             true,
		MaxRAM:            "6G",
		GameDir:           "minecraft",
		GameVersion:       "Forge 1.20.1",
		PackVersion:       "0.0.0",
		LogFile:           "launcher.log",
		APIURL:            "https://your-api-server.com",
		PrefetchedProfile: DefaultPrefetchedProfile,
	}
}

// Decode parses src as launcher.hcl over the defaults. Unknown
// attributes and type mismatches surface as diagnostics; absent ones
// keep their default.
func Decode(src []byte, filename string) (Settings, hcl.Diagnostics) {
	s := Default()

	p := hclparse.NewParser()
	file, diags := p.ParseHCL(src, filename)
	if diags.HasErrors() {
		return s, diags
	}
	decodeDiags := gohcl.DecodeBody(file.Body, nil, &s)
	diags = append(diags, decodeDiags...)
	if diags.HasErrors() {
		return s, diags
	}

	s.normalize()
	return s, diags
}

// normalize reverts out-of-range values to their defaults instead of
// failing the load.
func (s *Settings) normalize() {
	def := Default()
	if !ValidRAM(s.MaxRAM) {
		s.MaxRAM = def.MaxRAM
	}
	if s.PackVersion == "" {
		s.PackVersion = def.PackVersion
	}
	if s.GameDir == "" {
		s.GameDir = def.GameDir
	}
	if s.GameVersion == "" {
		s.GameVersion = def.GameVersion
	}
	if s.LogFile == "" {
		s.LogFile = def.LogFile
	}
}

// Encode renders the settings back to launcher.hcl source. Empty
// optional strings are omitted so the file stays readable.
func (s Settings) Encode() []byte {
	conf := hclwrite.NewEmptyFile()
	body := conf.Body()

	setString := func(name, val string) {
		if val == "" {
			return
		}
		body.SetAttributeValue(name, cty.StringVal(val))
	}

	setString("java_path", s.JavaPath)
	body.SetAttributeValue("java_ready", cty.BoolVal(s.JavaReady))
	setString("jre_url", s.JREURL)
	setString("username", s.Username)
	setString("uuid", s.UUID)
	body.SetAttributeValue("debug", cty.BoolVal(s.Debug))
	setString("max_ram", s.MaxRAM)
	setString("game_dir", s.GameDir)
	setString("version", s.GameVersion)
	setString("pack_url", s.PackURL)
	setString("pack_manifest_url", s.PackManifestURL)
	setString("pack_version", s.PackVersion)
	setString("log_file", s.LogFile)
	setString("api_url", s.APIURL)
	setString("auth_token", s.AuthToken)
	setString("plugins_url", s.PluginsURL)
	setString("authlib_url", s.AuthlibURL)
	setString("prefetched_profile", s.PrefetchedProfile)

	return conf.Bytes()
}

// ValidRAM reports whether v is a heap size the JVM and sane hardware
// both accept: 1G to 32G, or 512M to 32768M.
func ValidRAM(v string) bool {
	if v == "" {
		return false
	}
	unit := v[len(v)-1]
	num := v[:len(v)-1]
	n, err := strconv.Atoi(num)
	if err != nil {
		return false
	}
	switch unit {
	case 'G', 'g':
		return n >= 1 && n <= 32
	case 'M', 'm':
		return n >= 512 && n <= 32768
	}
	return false
}

// Redact returns a copy safe for logging.
func (s Settings) Redact() Settings {
	if s.AuthToken != "" {
		s.AuthToken = strings.Repeat("*", 8)
	}
	if s.PrefetchedProfile != "" {
		s.PrefetchedProfile = "<prefetched>"
	}
	return s
}
