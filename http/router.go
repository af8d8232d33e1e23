package http

import (
	"slices"
	"strings"
)

// Router collects routes during setup. Build freezes them into a
// RouteTable that is safe to share between workers.
type Router struct {
	Routes     []Route
	Middleware []Middleware
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

func (router *Router) GET(handler Handler, prefixes ...string) {
	router.Handle(MethodGet, handler, prefixes...)
}

func (router *Router) GETFunc(handler HandlerFunc, prefixes ...string) {
	router.GET(handler, prefixes...)
}

// Handle registers handler behind the router's middleware; the first
// middleware in the list ends up outermost. Middleware runs inside the
// route, so its failures carry the route name like any handler error.
func (router *Router) Handle(method Method, handler Handler, prefixes ...string) {
	for i := len(router.Middleware) - 1; i >= 0; i-- {
		handler = router.Middleware[i](handler)
	}

	router.Routes = append(router.Routes, NewRoute(method, handler, prefixes...))
}

func (router *Router) Build() *RouteTable {
	return NewRouteTable(router.Routes...)
}

// RouteTable is an ordered, read-only list of routes. Registration order is
// match priority.
type RouteTable struct {
	routes []Route
}

func NewRouteTable(routes ...Route) *RouteTable {
	table := &RouteTable{routes: make([]Route, len(routes))}
	for i, route := range routes {
		route.Prefixes = slices.Clone(route.Prefixes)
		table.routes[i] = route
	}
	return table
}

func (table *RouteTable) Len() int {
	if table == nil {
		return 0
	}
	return len(table.routes)
}

// Match returns the handler of the first route, in registration order,
// with a prefix equal to the part of path before its second '/'. The
// returned remainder is the rest of the path after that prefix.
func (table *RouteTable) Match(method Method, path string) (string, Handler, bool) {
	if table == nil {
		return "", nil, false
	}

	for _, route := range table.routes {
		if route.Method != method {
			continue
		}

		for _, prefix := range route.Prefixes {
			if rest, ok := matchPrefix(path, prefix); ok {
				return rest, route.Handler, true
			}
		}
	}

	return "", nil, false
}

func matchPrefix(path, prefix string) (string, bool) {
	head, rest := path, ""
	if first := strings.IndexByte(path, '/'); first >= 0 {
		if second := strings.IndexByte(path[first+1:], '/'); second >= 0 {
			cut := first + 1 + second
			head, rest = path[:cut], path[cut:]
		}
	}

	if head != prefix {
		return "", false
	}
	return rest, true
}

// SplitArgs splits a match remainder such as "/1/20" into ["1", "20"].
// A trailing slash yields a trailing empty argument.
func SplitArgs(rest string) []string {
	return strings.Split(rest, "/")[1:]
}
