package core

import "regexp"

// envPlaceholder matches scalars of the exact form ${NAME}.
var envPlaceholder = regexp.MustCompile(`^\$\{([^{}]+)\}$`)

// LookupFunc resolves an environment variable, reporting whether it is set.
type LookupFunc func(name string) (string, bool)

// SubstituteEnv walks a decoded YAML tree and replaces every string scalar
// of the form ${NAME} with the value of NAME. Unset variables leave the
// placeholder untouched. Keys, partial matches and non-string scalars are
// never rewritten. The input tree is not modified.
func SubstituteEnv(node any, lookup LookupFunc) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = SubstituteEnv(child, lookup)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = SubstituteEnv(child, lookup)
		}
		return out
	case string:
		m := envPlaceholder.FindStringSubmatch(v)
		if m == nil {
			return v
		}
		if val, ok := lookup(m[1]); ok {
			return val
		}
		return v
	default:
		return node
	}
}
