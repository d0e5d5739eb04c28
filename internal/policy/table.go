package policy

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// DefaultPolicy applies to paths no entry matches: authentication required,
// any recognized role.
var DefaultPolicy = RoutePolicy{Pattern: "*", Match: MatchWildcard}

// Resolution is the policy selected for a path.
type Resolution struct {
	Policy RoutePolicy
	// Fallback is true when DefaultPolicy was used.
	Fallback bool
}

type prefixEntry struct {
	policy RoutePolicy
	prefix string
	strict bool
}

// Table resolves paths to route policies. It is immutable after NewTable.
type Table struct {
	exact    map[string]RoutePolicy
	prefixes []prefixEntry
	wildcard *RoutePolicy
	entries  []RoutePolicy
}

// NewTable builds a table from entries in declaration order. Earlier entries
// win ties.
func NewTable(entries []RoutePolicy) (*Table, error) {
	t := &Table{
		exact:   make(map[string]RoutePolicy),
		entries: make([]RoutePolicy, 0, len(entries)),
	}

	for i, e := range entries {
		for _, r := range e.Roles {
			if !r.Valid() {
				return nil, fmt.Errorf("route %d (%s): unknown role %q", i, e.Pattern, r)
			}
		}

		switch e.Match {
		case MatchWildcard:
			if t.wildcard == nil {
				p := e
				t.wildcard = &p
			}
		case MatchExact, "":
			e.Match = MatchExact
			if !strings.HasPrefix(e.Pattern, "/") {
				return nil, fmt.Errorf("route %d: exact pattern %q must start with /", i, e.Pattern)
			}
			e.Pattern = NormalizePath(e.Pattern)
			if _, exists := t.exact[e.Pattern]; !exists {
				t.exact[e.Pattern] = e
			}
		case MatchPrefix:
			if !strings.HasPrefix(e.Pattern, "/") {
				return nil, fmt.Errorf("route %d: prefix pattern %q must start with /", i, e.Pattern)
			}
			strict := len(e.Pattern) > 1 && strings.HasSuffix(e.Pattern, "/")
			t.prefixes = append(t.prefixes, prefixEntry{
				policy: e,
				prefix: NormalizePath(e.Pattern),
				strict: strict,
			})
		default:
			return nil, fmt.Errorf("route %d (%s): unknown match kind %q", i, e.Pattern, e.Match)
		}
		t.entries = append(t.entries, e)
	}

	// Longest prefix first; the stable sort keeps declaration order for ties.
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})

	return t, nil
}

// Resolve returns the most specific policy for p: exact match, then longest
// prefix, then the wildcard entry, then DefaultPolicy.
func (t *Table) Resolve(p string) Resolution {
	p = NormalizePath(p)

	if policy, ok := t.exact[p]; ok {
		return Resolution{Policy: policy}
	}
	for _, e := range t.prefixes {
		if e.matches(p) {
			return Resolution{Policy: e.policy}
		}
	}
	if t.wildcard != nil {
		return Resolution{Policy: *t.wildcard}
	}
	return Resolution{Policy: DefaultPolicy, Fallback: true}
}

// Entries returns the policies in declaration order.
func (t *Table) Entries() []RoutePolicy {
	out := make([]RoutePolicy, len(t.entries))
	copy(out, t.entries)
	return out
}

// Prefix matching is segment-aware: /admin covers /admin and /admin/users but
// not /administrator. A strict prefix (declared with a trailing slash) only
// covers deeper paths.
func (e prefixEntry) matches(p string) bool {
	if e.prefix == "/" {
		return !e.strict || p != "/"
	}
	if p == e.prefix {
		return !e.strict
	}
	return strings.HasPrefix(p, e.prefix+"/")
}

// NormalizePath strips query and fragment, ensures a leading slash, collapses
// duplicate slashes, resolves dot segments, drops a trailing slash and
// lower-cases the result. The client router matches routes case-insensitively,
// so the table must too.
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.ToLower(path.Clean(p))
}
