package service

import (
	"github.com/medlink/session-client/internal/core/domain"
)

// GateInput is everything the navigation gate looks at.
type GateInput struct {
	Authenticated bool
	Initialized   bool
	Role          domain.Role
	Route         domain.Route
}

// GateInputFor builds the gate input for a session snapshot and a route.
func GateInputFor(s domain.SessionState, route domain.Route) GateInput {
	return GateInput{
		Authenticated: s.IsAuthenticated,
		Initialized:   s.IsInitialized,
		Role:          s.Role(),
		Route:         route,
	}
}

// Decision is the gate's verdict. Loading means the session is not known yet
// and only a neutral shell may render.
type Decision struct {
	Redirect bool
	Target   domain.Route
	Loading  bool
}

// Decide maps the session and the requested route to a navigation action.
// It has no side effects.
func Decide(in GateInput) Decision {
	if !in.Initialized {
		return Decision{Loading: true}
	}

	home := domain.Home(in.Role)
	if in.Authenticated {
		if in.Route.UnauthenticatedOnly() {
			return Decision{Redirect: true, Target: home}
		}
		if owner, ok := in.Route.OwnedBy(); ok && !in.Route.Shared() && owner != effectiveRole(in.Role) {
			return Decision{Redirect: true, Target: home}
		}
		return Decision{}
	}

	if !in.Route.UnauthenticatedOnly() && in.Route != domain.RouteLanding {
		return Decision{Redirect: true, Target: domain.RouteLanding}
	}
	return Decision{}
}

// ReachableRoutes is the set of primary destinations shown for a session.
// Signed out, that is the landing and sign-in stack.
func ReachableRoutes(s domain.SessionState) []domain.Route {
	if !s.IsInitialized {
		return nil
	}
	if !s.IsAuthenticated {
		return []domain.Route{
			domain.RouteLanding,
			domain.RouteChooseType,
			domain.RouteLogin,
			domain.RouteSignup,
			domain.RouteDoctorLogin,
			domain.RouteDoctorSignup,
		}
	}
	return domain.Tabs(effectiveRole(s.Role()))
}

func effectiveRole(r domain.Role) domain.Role {
	if r == domain.RoleDoctor {
		return domain.RoleDoctor
	}
	return domain.RolePatient
}
