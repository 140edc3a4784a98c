// Package guard gates commands on authentication state and application
// roles. A guarded command runs only when the session has settled on an
// authenticated user holding one of the required roles.
package guard

import (
	"context"

	"github.com/cccteam/ccc/accesstypes"
	"github.com/cccteam/fxadmin"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/httpio"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
)

// Sessioner is the subset of the session controller the guard needs.
type Sessioner interface {
	IsAuthenticated() bool
	Watch(fn func(authstate.State)) (cancel func())
	LoginRedirect(ctx context.Context, opts *fxadmin.LoginOptions)
}

// Route is a guarded destination. An empty Roles list admits any
// authenticated user.
type Route struct {
	Name  string
	Roles []accesstypes.Role
}

// Guard decides whether a route can be activated.
type Guard struct {
	session Sessioner
}

// New returns a Guard wired to the session.
func New(session Sessioner) *Guard {
	return &Guard{session: session}
}

// CanActivate returns nil when the route may be entered. An unauthenticated
// caller is denied and a re-login is started; a caller without the required
// roles is denied outright.
func (g *Guard) CanActivate(ctx context.Context, route Route) error {
	// Fast pre-check against the account cache before waiting on state.
	if !g.session.IsAuthenticated() {
		g.session.LoginRedirect(ctx, nil)

		return httpio.NewUnauthorizedMessage("Debe iniciar sesión para acceder a " + route.Name)
	}

	st, err := g.settledState(ctx)
	if err != nil {
		return err
	}
	if st.Status != authstate.StatusAuthenticated || st.User == nil {
		g.session.LoginRedirect(ctx, nil)

		return httpio.NewUnauthorizedMessage("Debe iniciar sesión para acceder a " + route.Name)
	}

	if len(route.Roles) == 0 {
		return nil
	}
	for _, role := range route.Roles {
		if st.User.HasRole(role) {
			return nil
		}
	}

	return httpio.NewForbiddenMessage("No tiene permisos para acceder a " + route.Name)
}

// PreRunE adapts the guard to a cobra PersistentPreRunE hook.
func (g *Guard) PreRunE(route Route) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return g.CanActivate(cmd.Context(), route)
	}
}

// settledState waits for the first session state that is neither
// initializing nor mid-transition.
func (g *Guard) settledState(ctx context.Context) (authstate.State, error) {
	settled := make(chan authstate.State, 1)
	cancel := g.session.Watch(func(st authstate.State) {
		if st.Status == authstate.StatusInitializing || st.IsLoading {
			return
		}
		select {
		case settled <- st:
		default:
		}
	})
	defer cancel()

	select {
	case st := <-settled:
		return st, nil
	case <-ctx.Done():
		return authstate.State{}, errors.Wrap(context.Cause(ctx), "waiting for session state")
	}
}
