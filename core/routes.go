package core

// Symbolic route names.
const (
	RouteHome            = "HOME"
	RouteLogin           = "LOGIN"
	RouteLogout          = "LOGOUT"
	RouteRegister        = "REGISTER"
	RouteForgotPassword  = "FORGOT_PASSWORD"
	RouteResetPassword   = "RESET_PASSWORD"
	RouteContact         = "CONTACT"
	RouteDashboard       = "DASHBOARD"
	RouteBookings        = "BOOKINGS"
	RouteTeacherCalendar = "TEACHER_CALENDAR"
	RouteStudentBookings = "STUDENT_BOOKINGS"
	RouteProfile         = "PROFILE"
)

// routes never changes after init; it is only reachable through the accessors below.
var routes = map[string]string{
	RouteHome:            "/",
	RouteLogin:           "/login",
	RouteLogout:          "/logout",
	RouteRegister:        "/register",
	RouteForgotPassword:  "/password-reset",
	RouteResetPassword:   "/password-reset/confirm",
	RouteContact:         "/contact",
	RouteDashboard:       "/dashboard",
	RouteBookings:        "/bookings",
	RouteTeacherCalendar: "/teacher/calendar",
	RouteStudentBookings: "/student/bookings",
	RouteProfile:         "/profile",
}

// LookupRoute returns the path registered under name.
func LookupRoute(name string) (string, bool) {
	p, ok := routes[name]
	return p, ok
}

// Route returns the path registered under name and panics on unknown names,
// which are programming errors.
func Route(name string) string {
	p, ok := LookupRoute(name)
	if !ok {
		panic("core: unknown route " + name)
	}
	return p
}

// Routes returns a copy of the route table.
func Routes() map[string]string {
	cp := make(map[string]string, len(routes))
	for k, v := range routes {
		cp[k] = v
	}
	return cp
}
