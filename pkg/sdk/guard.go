package sdk

// DecisionKind is what a guard tells its caller to do.
type DecisionKind int

const (
	// Render lets the guarded content through.
	Render DecisionKind = iota
	// Loading blocks the content while the session is unresolved.
	Loading
	// Redirect sends the visitor elsewhere.
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Kind DecisionKind
	// Target is the redirect destination.
	Target string
	// From is the originally requested location, kept for the
	// post-login redirect.
	From string
}

// Routes names the two locations the guards redirect between.
type Routes struct {
	Login string
	Home  string
}

// DefaultRoutes returns the dashboard's login and home locations.
func DefaultRoutes() Routes {
	return Routes{Login: "/auth/login", Home: "/"}
}

// Protected gates screens that need an authenticated session.
func (r Routes) Protected(status Status, location string) Decision {
	switch {
	case status == StatusUnknown:
		return Decision{Kind: Loading}
	case status == StatusUnauthenticated && location != r.Login:
		return Decision{Kind: Redirect, Target: r.Login, From: location}
	default:
		return Decision{Kind: Render}
	}
}

// Public gates the login screen so signed-in visitors go home instead.
func (r Routes) Public(status Status, location string) Decision {
	switch {
	case status == StatusUnknown:
		return Decision{Kind: Loading}
	case status == StatusAuthenticated && location == r.Login:
		return Decision{Kind: Redirect, Target: r.Home}
	default:
		return Decision{Kind: Render}
	}
}
