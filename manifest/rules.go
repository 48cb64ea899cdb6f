package manifest

const (
	ActionAllow    = "allow"
	ActionDisallow = "disallow"
)

type Rule struct {
	Action   string          `json:"action"`
	OS       *OSConstraint   `json:"os"`
	Features map[string]bool `json:"features"`
}

type OSConstraint struct {
	Name string `json:"name"`
}

// matches reports whether the rule's OS constraint matches osName.
// A rule without an OS constraint matches any OS.
func (r Rule) matches(osName string) bool {
	if r.OS == nil || r.OS.Name == "" {
		return true
	}
	return r.OS.Name == osName
}

// Eval folds a rule list into an include decision for the given OS.
// The fold starts from true and applies every rule in order with no
// early exit, so later rules override earlier ones: an allow rule
// whose OS does not match clears the decision, as does a disallow
// rule whose OS matches. An empty list always includes.
func Eval(rules []Rule, osName string) bool {
	include := true
	for _, r := range rules {
		switch r.Action {
		case ActionAllow:
			if !r.matches(osName) {
				include = false
			}
		case ActionDisallow:
			if r.matches(osName) {
				include = false
			}
		}
	}
	return include
}
