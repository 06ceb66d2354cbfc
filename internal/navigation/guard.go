package navigation

import (
	"context"
	"log/slog"
)

// AuthState is the session state observed at the instant of a navigation.
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Decision is the guard's verdict for one navigation attempt. When Allow is
// false the navigation is replaced by a navigation to the Redirect route.
type Decision struct {
	Allow    bool
	Redirect string
	Replace  bool
}

// Evaluate decides a navigation from the current auth state. It is pure:
// the caller supplies the state, read fresh for every attempt.
func Evaluate(state AuthState, to, _ Location) Decision {
	if to.IsProtected() && state == Unauthenticated {
		return Decision{Redirect: RouteLogin, Replace: true}
	}
	if to.Name == RouteLogin && state == Authenticated {
		return Decision{Redirect: RouteHome, Replace: true}
	}
	return Decision{Allow: true}
}

// TokenReader reads the current session token.
type TokenReader interface {
	Token(ctx context.Context) (string, bool, error)
}

// Guard binds Evaluate to a live session.
type Guard struct {
	session TokenReader
	logger  *slog.Logger
}

func NewGuard(session TokenReader, logger *slog.Logger) *Guard {
	return &Guard{session: session, logger: logger}
}

// State reads the session now. A storage failure counts as unauthenticated.
func (g *Guard) State(ctx context.Context) AuthState {
	_, ok, err := g.session.Token(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "guard could not read session, treating as logged out",
			"error", err,
		)
		return Unauthenticated
	}
	if ok {
		return Authenticated
	}
	return Unauthenticated
}

// Check evaluates one navigation attempt against the session as it is now.
func (g *Guard) Check(ctx context.Context, to, from Location) Decision {
	return Evaluate(g.State(ctx), to, from)
}
