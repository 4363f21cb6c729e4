package router

// Route classifies an inbound request.
type Route int

const (
	// RouteUnknown is never returned by Classify; it is the zero value.
	RouteUnknown Route = iota
	// RouteHead is any HEAD request.
	RouteHead
	// RouteRoot is GET on the root path.
	RouteRoot
	// RouteQuery is GET on any path other than the builtins.
	RouteQuery
	// RouteSolveGet is GET on the legacy solve path.
	RouteSolveGet
	// RouteComponentPost is POST on a component's declared uri.
	RouteComponentPost
	// RouteRootSolve is POST on the root path.
	RouteRootSolve
	// RouteLegacySolve is POST on the legacy solve path.
	RouteLegacySolve
	// RouteSolve is POST on any other path.
	RouteSolve
	// RouteUnsupportedMethod is any other verb.
	RouteUnsupportedMethod
)

func (r Route) String() string {
	switch r {
	case RouteHead:
		return "head"
	case RouteRoot:
		return "root"
	case RouteQuery:
		return "query"
	case RouteSolveGet:
		return "solve_get"
	case RouteComponentPost:
		return "component_post"
	case RouteRootSolve:
		return "root_solve"
	case RouteLegacySolve:
		return "legacy_solve"
	case RouteSolve:
		return "solve"
	case RouteUnsupportedMethod:
		return "unsupported_method"
	default:
		return "unknown"
	}
}
