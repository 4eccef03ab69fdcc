package router

import (
	"strings"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/wire"
)

// Route paths.
const (
	PathHealth     = "/health"
	PathCompletion = "/completion"
)

// route is one row of the dispatch table.
type route struct {
	name   string
	method string
	path   string
}

// routes is checked in order; the first match wins.
var routes = []route{
	{name: audit.RouteHealth, method: "GET", path: PathHealth},
	{name: audit.RouteCompletion, method: "POST", path: PathCompletion},
}

// Match returns the name of the route req selects, or audit.RouteNotFound.
//
// By default a route matches when the method is equal and the path starts with
// the route path, so "/healthz" and "/health?x=1" both select health. With strict
// set the path, with any query string removed, must equal the route path.
func Match(req *wire.Request, strict bool) string {
	for _, r := range routes {
		if matches(req, r, strict) {
			return r.name
		}
	}
	return audit.RouteNotFound
}

func matches(req *wire.Request, r route, strict bool) bool {
	if !strict {
		return req.HasPrefix(r.method, r.path)
	}
	if req.Method != r.method {
		return false
	}
	path, _, _ := strings.Cut(req.Path, "?")
	return path == r.path
}
