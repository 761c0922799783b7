package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutes(t *testing.T) {
	want := map[string]string{
		"HOME":             "/",
		"LOGIN":            "/login",
		"LOGOUT":           "/logout",
		"REGISTER":         "/register",
		"FORGOT_PASSWORD":  "/password-reset",
		"RESET_PASSWORD":   "/password-reset/confirm",
		"CONTACT":          "/contact",
		"DASHBOARD":        "/dashboard",
		"BOOKINGS":         "/bookings",
		"TEACHER_CALENDAR": "/teacher/calendar",
		"STUDENT_BOOKINGS": "/student/bookings",
		"PROFILE":          "/profile",
	}
	assert.Equal(t, want, Routes())

	for name, path := range want {
		got, ok := LookupRoute(name)
		assert.True(t, ok, name)
		assert.Equal(t, path, got)
		assert.Equal(t, path, Route(name))
	}

	_, ok := LookupRoute("NOPE")
	assert.False(t, ok)
	assert.Panics(t, func() { Route("NOPE") })
}

func TestRoutesIsACopy(t *testing.T) {
	cp := Routes()
	cp[RouteHome] = "/elsewhere"
	delete(cp, RouteLogin)

	assert.Equal(t, "/", Route(RouteHome))
	assert.Equal(t, "/login", Route(RouteLogin))
}

func TestRoutePathsUnique(t *testing.T) {
	seen := make(map[string]string)
	for name, path := range Routes() {
		if other, ok := seen[path]; ok {
			t.Errorf("%s and %s share path %s", name, other, path)
		}
		seen[path] = name
	}
}
