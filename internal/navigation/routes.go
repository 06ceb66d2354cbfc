// Package navigation holds the console's route tree and the guard that
// decides, on every navigation attempt, whether the destination may be shown.
package navigation

import (
	"fmt"
	"strings"

	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

// Named routes the guard redirects to.
const (
	RouteLogin = "login"
	RouteHome  = "home"
)

// Route is a node of the route tree. A nil RequiresAuth inherits from the
// parent; at the root nil means protected. Only an explicit false opens a route.
type Route struct {
	Name         string
	Path         string
	RequiresAuth *bool
	Children     []Route
}

// Public marks a route as reachable without a session.
func Public() *bool {
	v := false
	return &v
}

// Protected marks a route as requiring a session.
func Protected() *bool {
	v := true
	return &v
}

// DefaultRoutes returns the console's route tree: the public login page and
// the authenticated shell with every role's views beneath it.
func DefaultRoutes() []Route {
	leaves := []string{
		"/admin/user-management",
		"/admin/order-management",
		"/admin/data-analysis",
		"/merchant/inventory-management",
		"/merchant/product-listing",
		"/merchant/product-delisting",
		"/merchant/stock-in",
		"/merchant/order-management",
		"/merchant/logistics-query",
		"/merchant/logistics-query/:orderId",
		"/general/mall",
		"/consumer/my-orders",
		"/consumer/logistics-query",
		"/consumer/logistics-query/:orderId",
		"/consumer/address-management",
		"/driver/pending-pickup",
		"/driver/pending-delivery",
		"/driver/delivery-batch",
		"/driver/delivery-batch-detail/:batchId",
		"/driver/history-tasks",
	}
	children := make([]Route, 0, len(leaves))
	for _, p := range leaves {
		children = append(children, Route{Path: p})
	}
	return []Route{
		{Name: RouteLogin, Path: "/", RequiresAuth: Public()},
		{Name: RouteHome, Path: "/demo", RequiresAuth: Protected(), Children: children},
	}
}

// Location is a resolved navigation target.
type Location struct {
	Name string
	// Path is the concrete path that was resolved.
	Path string
	// Pattern is the matched route path; empty when nothing matched.
	Pattern      string
	Params       map[string]string
	RequiresAuth *bool
}

// Matched reports whether the location corresponds to a declared route.
func (l Location) Matched() bool {
	return l.Pattern != ""
}

// IsProtected reports whether the location needs a session.
func (l Location) IsProtected() bool {
	return l.RequiresAuth == nil || *l.RequiresAuth
}

type entry struct {
	name         string
	pattern      string
	segments     []string
	requiresAuth *bool
}

// Table is the flattened, matchable form of a route tree.
type Table struct {
	entries []entry
	byName  map[string]int
}

// NewTable flattens routes. Duplicate names are rejected.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{byName: make(map[string]int)}
	if err := t.add(routes, "", nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) add(routes []Route, parent string, inherited *bool) error {
	for _, r := range routes {
		pattern := r.Path
		if !strings.HasPrefix(pattern, "/") {
			pattern = strings.TrimSuffix(parent, "/") + "/" + pattern
		}
		auth := r.RequiresAuth
		if auth == nil {
			auth = inherited
		}
		if r.Name != "" {
			if _, dup := t.byName[r.Name]; dup {
				return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate route name %q", r.Name))
			}
			t.byName[r.Name] = len(t.entries)
		}
		t.entries = append(t.entries, entry{
			name:         r.Name,
			pattern:      pattern,
			segments:     split(pattern),
			requiresAuth: auth,
		})
		if err := t.add(r.Children, pattern, auth); err != nil {
			return err
		}
	}
	return nil
}

// Resolve matches path against the table. Static segments must be equal and
// a ":name" segment captures one non-empty segment. An unknown path resolves
// to an unnamed, protected location.
func (t *Table) Resolve(path string) Location {
	path, _, _ = strings.Cut(path, "?")
	path, _, _ = strings.Cut(path, "#")
	if path == "" {
		path = "/"
	}
	segments := split(path)
	for _, e := range t.entries {
		if params, ok := match(e.segments, segments); ok {
			return Location{
				Name:         e.name,
				Path:         path,
				Pattern:      e.pattern,
				Params:       params,
				RequiresAuth: e.requiresAuth,
			}
		}
	}
	return Location{Path: path}
}

// Lookup returns the location of a named route. Routes with parameters
// cannot be looked up by name.
func (t *Table) Lookup(name string) (Location, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Location{}, false
	}
	e := t.entries[i]
	return Location{Name: e.name, Path: e.pattern, Pattern: e.pattern, RequiresAuth: e.requiresAuth}, true
}

// Patterns lists every route pattern in declaration order.
func (t *Table) Patterns() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.pattern)
	}
	return out
}

// Validate checks that the login route exists, is public and is the only
// public route, and that the home route exists.
func (t *Table) Validate() error {
	var violations []string
	login, ok := t.Lookup(RouteLogin)
	if !ok {
		violations = append(violations, "login route missing")
	} else if login.IsProtected() {
		violations = append(violations, "login route must be public")
	}
	if _, ok := t.Lookup(RouteHome); !ok {
		violations = append(violations, "home route missing")
	}
	for _, e := range t.entries {
		if e.name == RouteLogin {
			continue
		}
		if e.requiresAuth != nil && !*e.requiresAuth {
			violations = append(violations, fmt.Sprintf("route %s must not be public", e.pattern))
		}
	}
	if len(violations) > 0 {
		return dErrors.Validation("route table rejected", violations)
	}
	return nil
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
