// Package manifest reads the version manifest describing a game
// version: its main class, libraries and launch argument templates.
// The format is the semi-structured JSON shipped by vanilla and
// modded version installers; everything is validated once here so the
// rest of the launcher works with typed values.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const (
	// DefaultMainClass is used when the manifest omits mainClass.
	DefaultMainClass = "cpw.mods.bootstraplauncher.BootstrapLauncher"

	// DefaultAssetIndex is used when the manifest carries neither an
	// assets id nor an assetIndex object.
	DefaultAssetIndex = "5"
)

var ErrBadArgument = errors.New("malformed argument token")

type Manifest struct {
	MainClass  string      `json:"mainClass"`
	Assets     string      `json:"assets"`
	AssetIndex *AssetIndex `json:"assetIndex"`
	Libraries  []Library   `json:"libraries"`
	Arguments  *Arguments  `json:"arguments"`
}

type AssetIndex struct {
	ID string `json:"id"`
}

type Arguments struct {
	JVM  []Argument `json:"jvm"`
	Game []Argument `json:"game"`
}

type Library struct {
	Name         string            `json:"name"`
	Rules        []Rule            `json:"rules"`
	Downloads    Downloads         `json:"downloads"`
	Natives      map[string]string `json:"natives"`
	DownloadOnly bool              `json:"downloadOnly"`
}

type Downloads struct {
	Artifact    *Artifact           `json:"artifact"`
	Classifiers map[string]Artifact `json:"classifiers"`
}

type Artifact struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Argument is one token of the arguments.jvm or arguments.game lists.
// Plain string tokens decode to a single-element Values slice.
// Object tokens carry rules and decode with Conditional set.
// JSON null tokens decode with Null set and are skipped downstream.
type Argument struct {
	Values      []string
	Rules       []Rule
	Conditional bool
	Null        bool
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrBadArgument
	}
	if bytes.Equal(data, []byte("null")) {
		*a = Argument{Null: true}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Argument{Values: []string{s}}
		return nil
	case '{':
		var obj struct {
			Rules []Rule          `json:"rules"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		vals, err := decodeValue(obj.Value)
		if err != nil {
			return err
		}
		*a = Argument{Values: vals, Rules: obj.Rules, Conditional: true}
		return nil
	}
	return ErrBadArgument
}

// decodeValue accepts the value field in both of its wire shapes:
// a single string or an array. Non-string array elements are dropped.
func decodeValue(data json.RawMessage) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		vals := make([]string, 0, len(raw))
		for _, r := range raw {
			r = bytes.TrimSpace(r)
			if len(r) == 0 || r[0] != '"' {
				continue
			}
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return nil, err
			}
			vals = append(vals, s)
		}
		return vals, nil
	}
	return nil, ErrBadArgument
}

// FeatureGated reports whether any rule carries a features constraint.
// Feature-gated game arguments (demo mode, quick play) are dropped
// unconditionally; see the synthesizer.
func (a Argument) FeatureGated() bool {
	for _, r := range a.Rules {
		if r.Features != nil {
			return true
		}
	}
	return false
}

// MainClassName returns the manifest main class or the bootstrap default.
func (m *Manifest) MainClassName() string {
	if m.MainClass != "" {
		return m.MainClass
	}
	return DefaultMainClass
}

// AssetIndexID prefers the legacy assets id over assetIndex.id.
func (m *Manifest) AssetIndexID() string {
	if m.Assets != "" {
		return m.Assets
	}
	if m.AssetIndex != nil && m.AssetIndex.ID != "" {
		return m.AssetIndex.ID
	}
	return DefaultAssetIndex
}

// ArtifactPath returns the library path relative to the libraries
// directory. An explicit downloads.artifact.path wins; otherwise the
// path is derived from the Maven coordinate name
// "group:artifact:version[:classifier]". Returns "" when neither form
// yields a usable path.
func (l Library) ArtifactPath() string {
	if l.Downloads.Artifact != nil && l.Downloads.Artifact.Path != "" {
		return l.Downloads.Artifact.Path
	}
	parts := strings.SplitN(l.Name, ":", 4)
	if len(parts) < 3 {
		return ""
	}
	group, artifact, version := parts[0], parts[1], parts[2]
	file := artifact + "-" + version
	if len(parts) == 4 && parts[3] != "" {
		file += "-" + parts[3]
	}
	return fmt.Sprintf("%s/%s/%s/%s.jar",
		strings.ReplaceAll(group, ".", "/"), artifact, version, file)
}

// Parse decodes and validates a version manifest.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Load reads a version manifest from the given filesystem.
func Load(files billy.Basic, fpath string) (*Manifest, error) {
	f, err := files.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// OSName maps the runtime OS onto the names used by manifest rules.
func OSName() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}
