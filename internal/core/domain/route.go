package domain

// Route names one screen of the app.
type Route string

const (
	RouteLanding    Route = "landing"
	RouteChooseType Route = "choose-type"
	RouteLogin      Route = "login"
	RouteSignup     Route = "signup"
	RouteNotFound   Route = "not-found"

	RouteDoctorLogin  Route = "doctor-login"
	RouteDoctorSignup Route = "doctor-signup"

	// Patient tabs.
	RouteHome         Route = "home"
	RouteDoctors      Route = "doctors"
	RouteMyChats      Route = "my-chats"
	RouteAppointments Route = "appointments"
	RouteProfile      Route = "profile"

	// Doctor tabs.
	RouteDoctorHome         Route = "doctor-home"
	RouteDoctorAppointments Route = "doctor-appointments"
	RoutePatients           Route = "patients"
	RouteDoctorProfile      Route = "doctor-profile"

	// Deep screens reachable from either role.
	RouteBookConsultation Route = "book-consultation"
	RouteChatDetail       Route = "chat-detail"
)

var unauthenticatedOnly = map[Route]struct{}{
	RouteLogin:        {},
	RouteSignup:       {},
	RouteChooseType:   {},
	RouteDoctorLogin:  {},
	RouteDoctorSignup: {},
}

var patientTabs = []Route{RouteHome, RouteDoctors, RouteMyChats, RouteAppointments, RouteProfile}

var doctorTabs = []Route{RouteDoctorHome, RouteDoctorAppointments, RoutePatients, RouteDoctorProfile}

// Deep screens stay resolvable for both roles even when they sit in the other
// role's tab set.
var sharedDeep = map[Route]struct{}{
	RouteDoctorProfile:    {},
	RouteBookConsultation: {},
	RouteChatDetail:       {},
}

var known = func() map[Route]struct{} {
	m := map[Route]struct{}{RouteLanding: {}, RouteNotFound: {}}
	for r := range unauthenticatedOnly {
		m[r] = struct{}{}
	}
	for _, r := range patientTabs {
		m[r] = struct{}{}
	}
	for _, r := range doctorTabs {
		m[r] = struct{}{}
	}
	for r := range sharedDeep {
		m[r] = struct{}{}
	}
	return m
}()

// ParseRoute maps a path segment to a Route. The empty segment and "index"
// are the patient home; anything unknown is RouteNotFound.
func ParseRoute(segment string) Route {
	switch segment {
	case "", "index", "/":
		return RouteHome
	}
	r := Route(segment)
	if _, ok := known[r]; !ok {
		return RouteNotFound
	}
	return r
}

// UnauthenticatedOnly reports whether r belongs to the login/signup group.
func (r Route) UnauthenticatedOnly() bool {
	_, ok := unauthenticatedOnly[r]
	return ok
}

func (r Route) Shared() bool {
	_, ok := sharedDeep[r]
	return ok
}

// Tabs returns the primary destinations for role, in display order.
func Tabs(role Role) []Route {
	src := patientTabs
	if role == RoleDoctor {
		src = doctorTabs
	}
	out := make([]Route, len(src))
	copy(out, src)
	return out
}

// Home is the landing tab for role once signed in.
func Home(role Role) Route {
	if role == RoleDoctor {
		return RouteDoctorHome
	}
	return RouteHome
}

// OwnedBy reports which role's tab set r belongs to. ok is false for routes
// outside both tab sets.
func (r Route) OwnedBy() (role Role, ok bool) {
	for _, t := range doctorTabs {
		if t == r {
			return RoleDoctor, true
		}
	}
	for _, t := range patientTabs {
		if t == r {
			return RolePatient, true
		}
	}
	return "", false
}
