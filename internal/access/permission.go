package access

import (
	"net/http"
	"regexp"
)

// PathMatcher is either an exact path or a compiled pattern. Exactly one of
// the two is set.
type PathMatcher struct {
	exact   string
	pattern *regexp.Regexp
}

func Exact(path string) PathMatcher {
	return PathMatcher{exact: path}
}

func Pattern(expr string) PathMatcher {
	return PathMatcher{pattern: regexp.MustCompile(expr)}
}

func (m PathMatcher) Match(path string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(path)
	}

	return m.exact == path
}

func (m PathMatcher) String() string {
	if m.pattern != nil {
		return m.pattern.String()
	}

	return m.exact
}

// Rule grants a set of methods on the paths its matcher accepts. A nil
// method set grants every method.
type Rule struct {
	Path    PathMatcher
	Methods map[string]struct{}
}

func NewRule(path PathMatcher, methods ...string) Rule {
	if len(methods) == 0 {
		return Rule{Path: path}
	}

	set := make(map[string]struct{}, len(methods))
	for _, method := range methods {
		set[method] = struct{}{}
	}

	return Rule{Path: path, Methods: set}
}

func (r Rule) Allows(path string, method string) bool {
	if !r.Path.Match(path) {
		return false
	}
	if r.Methods == nil {
		return true
	}

	_, ok := r.Methods[method]
	return ok
}

// Table maps each role to its ordered rule list. It is never mutated after
// construction and is safe for concurrent use.
type Table struct {
	rules map[Role][]Rule
}

func NewTable(rules map[Role][]Rule) *Table {
	copied := make(map[Role][]Rule, len(rules))
	for role, list := range rules {
		copied[role] = append([]Rule(nil), list...)
	}

	return &Table{rules: copied}
}

// Match returns the first rule of role that grants method on path.
func (t *Table) Match(role Role, path string, method string) (Rule, bool) {
	for _, rule := range t.rules[role] {
		if rule.Allows(path, method) {
			return rule, true
		}
	}

	return Rule{}, false
}

func (t *Table) IsAllowed(role Role, path string, method string) bool {
	_, ok := t.Match(role, path, method)
	return ok
}

func (t *Table) Rules(role Role) []Rule {
	return append([]Rule(nil), t.rules[role]...)
}

var defaultTable = NewTable(map[Role][]Rule{
	RoleAdmin: {
		NewRule(Pattern(`^/api/.*`), http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete),
	},
	RoleManager: {
		NewRule(Pattern(`^/api/libraries(/.*)?$`), http.MethodGet, http.MethodPatch),
		NewRule(Exact("/api/users"), http.MethodGet),
		NewRule(Pattern(`^/api/books(/.*)?$`), http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete),
		NewRule(Pattern(`^/api/(loans|reservations|penalties)(/.*)?$`), http.MethodGet, http.MethodPost, http.MethodPatch),
	},
	RoleClient: {
		NewRule(Exact("/api/users/me"), http.MethodGet, http.MethodPatch),
		NewRule(Exact("/api/books"), http.MethodGet),
		NewRule(Exact("/api/reservations"), http.MethodGet, http.MethodPost, http.MethodDelete),
		NewRule(Exact("/api/feedbacks"), http.MethodGet, http.MethodPost),
	},
	RoleDelivery: {
		NewRule(Exact("/api/sales"), http.MethodGet, http.MethodPatch),
		NewRule(Exact("/api/users/me"), http.MethodGet),
	},
})

// DefaultTable is the application's permission table.
func DefaultTable() *Table {
	return defaultTable
}

// IsAllowed evaluates the default table.
func IsAllowed(role Role, path string, method string) bool {
	return defaultTable.IsAllowed(role, path, method)
}
