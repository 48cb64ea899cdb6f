package launch

import (
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/flurrymoe/purrlauncher/manifest"
)

// AgentJarName is the auth proxy agent expected under <gameDir>/libraries.
const AgentJarName = "authlib-injector.jar"

const prefetchedFlag = "-Dauthlibinjector.yggdrasil.prefetched="

// Synthesizer produces the ordered JVM and game argument vectors from
// a version manifest and a placeholder context.
type Synthesizer struct {
	OS  string
	Log zerolog.Logger
}

// JVMArgs returns the JVM-side argument vector. Manifests without an
// arguments object fall back to the legacy fixed three-token form.
func (s *Synthesizer) JVMArgs(m *manifest.Manifest, vars map[string]string) []string {
	if m.Arguments == nil || m.Arguments.JVM == nil {
		return []string{
			"-Djava.library.path=" + vars["natives_directory"],
			"-cp",
			vars["classpath"],
		}
	}
	return s.expand(m.Arguments.JVM, vars)
}

// GameArgs returns the game-side argument vector. The legacy form is
// the fixed flag/value pair list in its documented order.
func (s *Synthesizer) GameArgs(m *manifest.Manifest, vars map[string]string) []string {
	if m.Arguments == nil || m.Arguments.Game == nil {
		return []string{
			"--version", vars["version_name"],
			"--gameDir", vars["game_directory"],
			"--assetsDir", vars["assets_root"],
			"--assetIndex", vars["assets_index_name"],
			"--uuid", vars["auth_uuid"],
			"--username", vars["auth_player_name"],
			"--accessToken", vars["auth_access_token"],
			"--userType", vars["user_type"],
		}
	}
	return s.expand(m.Arguments.Game, vars)
}

// expand walks modern-format tokens in order. Null tokens are
// skipped. Feature-gated tokens are dropped unconditionally: the
// launcher never activates demo or quick-play features, so manifests
// gating on them must not contribute arguments.
func (s *Synthesizer) expand(args []manifest.Argument, vars map[string]string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a.Null {
			continue
		}
		if a.Conditional {
			if a.FeatureGated() {
				continue
			}
			if !manifest.Eval(a.Rules, s.OS) {
				continue
			}
		}
		for _, v := range a.Values {
			out = append(out, Substitute(v, vars))
		}
	}
	return out
}

// AddAuthAgent prepends the auth proxy agent tokens to jvmArgs when a
// real session token is present and the agent jar is installed. The
// agent tokens go to the front so they take effect before any other
// JVM argument. Token "0" marks an offline session and makes this a
// no-op, as does a missing agent jar.
func (s *Synthesizer) AddAuthAgent(jvmArgs []string, files billy.Basic, gameDir, apiURL, accessToken, prefetched string) []string {
	if accessToken == "" || accessToken == "0" {
		s.Log.Info().Msg("offline session, skipping auth agent")
		return jvmArgs
	}
	agentJar := files.Join(gameDir, "libraries", AgentJarName)
	if _, err := files.Stat(agentJar); err != nil {
		s.Log.Info().Msgf("auth agent jar not installed, skipping: %s", agentJar)
		return jvmArgs
	}

	var head []string
	if prefetched != "" {
		head = append(head, prefetchedFlag+prefetched)
	}
	head = append(head, "-javaagent:"+agentJar+"="+apiURL)
	s.Log.Info().Msgf("auth agent enabled for %s", apiURL)
	return append(head, jvmArgs...)
}
