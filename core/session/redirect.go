package session

import (
	"sync"

	"github.com/lobitocorner/lobito/core"
)

type (
	// Navigator replaces the current location with path.
	Navigator interface {
		Replace(path string)
	}

	NavigatorFunc func(path string)

	// Rule sends a resolved session matching Match to Route.
	Rule struct {
		Match func(Snapshot) bool
		Route string
	}

	// Redirector navigates once each time the session goes from loading to resolved, to the route of the
	// first matching Rule. No match means no navigation. With a nil Navigator it only records the target.
	Redirector struct {
		mu          sync.Mutex
		nav         Navigator
		rules       []Rule
		lastLoading bool
		target      string
	}
)

func (f NavigatorFunc) Replace(path string) { f(path) }

func NewRedirector(nav Navigator, rules ...Rule) *Redirector {
	return &Redirector{
		nav:         nav,
		rules:       rules,
		lastLoading: true,
	}
}

// NewBookingsRedirector sends teachers to their calendar and students to their bookings, teachers first.
func NewBookingsRedirector(nav Navigator) *Redirector {
	return NewRedirector(nav,
		Rule{Match: Snapshot.IsTeacher, Route: core.Route(core.RouteTeacherCalendar)},
		Rule{Match: Snapshot.IsStudent, Route: core.Route(core.RouteStudentBookings)},
	)
}

// Observe feeds a snapshot to the Redirector.
func (r *Redirector) Observe(s Snapshot) {
	r.mu.Lock()
	wasLoading := r.lastLoading
	r.lastLoading = s.Loading
	if s.Loading || !wasLoading {
		r.mu.Unlock()
		return
	}
	var route string
	for _, rule := range r.rules {
		if rule.Match(s) {
			route = rule.Route
			break
		}
	}
	r.target = route
	r.mu.Unlock()

	if route != "" && r.nav != nil {
		r.nav.Replace(route)
	}
}

// Attach subscribes the Redirector to p.
func (r *Redirector) Attach(p *Provider) (detach func()) {
	return p.Subscribe(r.Observe)
}

// Target is the route of the last navigation, false when there was none.
func (r *Redirector) Target() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.target != ""
}
