package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/session"
	"github.com/lobitocorner/lobito/core/utils"
)

const (
	pricingCurrency    = "AOA"
	testimonialExcerpt = 140
)

type (
	feature struct {
		Title, Description string
	}

	plan struct {
		Name, Description, Price string
	}

	testimonial struct {
		Author, Role, Quote string
	}

	calendarDay struct {
		Date    string
		IsToday bool
	}
)

var (
	features = []feature{
		{"One-to-one lessons", "Book a qualified teacher for the subject and level you need."},
		{"Flexible schedule", "Pick the slots that fit your week, online or in person."},
		{"Progress you can see", "Teachers share notes and goals after every lesson."},
	}
	plans = []struct {
		name, description string
		amount            float64
	}{
		{"Single lesson", "One hour, any subject", 5000},
		{"Monthly", "Eight lessons a month", 36000},
		{"Exam prep", "Twenty lessons with mock exams", 85000},
	}
	testimonials = []testimonial{
		{"Maria J.", "Parent", "My son went from dreading maths to asking for extra exercises. The teachers at Lobito Corner are patient, well prepared and always on time, and the weekly notes help us follow his progress at home."},
		{"Paulo N.", "Student", "Great English classes before my university interviews."},
		{"Sofia A.", "Teacher", "Managing my calendar and my students in one place saves me hours every week, and I can focus on preparing lessons instead of chasing messages."},
	}
)

func registerPages(e *echo.Echo, s *Server) {
	e.GET(core.Route(core.RouteHome), s.home)
	e.GET(core.Route(core.RouteBookings), s.bookings)

	// dashboard pages; route level middleware so unknown paths still 404
	e.GET(core.Route(core.RouteDashboard), s.dashboard, s.requireAuth)
	e.GET(core.Route(core.RouteProfile), s.profile, s.requireAuth)
	e.GET(core.Route(core.RouteTeacherCalendar), s.teacherCalendar, s.requireAuth, requireRole(session.Snapshot.IsTeacher))
	e.GET(core.Route(core.RouteStudentBookings), s.studentBookings, s.requireAuth, requireRole(session.Snapshot.IsStudent))
}

func (s *Server) home(ctx echo.Context) error {
	priced := make([]plan, 0, len(plans))
	for _, p := range plans {
		priced = append(priced, plan{Name: p.name, Description: p.description, Price: utils.FormatCurrency(p.amount, pricingCurrency)})
	}
	quotes := make([]testimonial, 0, len(testimonials))
	for _, t := range testimonials {
		t.Quote = utils.Truncate(t.Quote, testimonialExcerpt)
		quotes = append(quotes, t)
	}

	vd := s.newViewData(ctx, core.Meta.Tagline)
	vd.Data = map[string]interface{}{
		"Description":  core.Meta.Description,
		"Features":     features,
		"Plans":        priced,
		"Testimonials": quotes,
	}
	return s.render(ctx, http.StatusOK, tmplHome, vd)
}

// bookings sends teachers to their calendar and students to their bookings once the session has
// resolved. It shows the waiting page while loading and an empty page to anyone else.
func (s *Server) bookings(ctx echo.Context) error {
	snap := providerFrom(ctx).Snapshot()
	r := session.NewBookingsRedirector(nil)
	r.Observe(snap)

	if target, ok := r.Target(); ok {
		return ctx.Redirect(http.StatusFound, target)
	}
	if snap.Loading {
		return s.renderWaiting(ctx)
	}
	return ctx.HTML(http.StatusOK, "")
}

func (s *Server) dashboard(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Dashboard")
	usr := vd.Session.User
	vd.Data = map[string]interface{}{
		"Today":     utils.FormatDate(nowFunc(), vd.Locale),
		"RoleLabel": usr.RoleLabel(),
		"FirstName": utils.Capitalize(firstWord(usr.Name)),
	}
	return s.render(ctx, http.StatusOK, tmplDashboard, vd)
}

func (s *Server) profile(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Profile")
	vd.Data = map[string]interface{}{
		"RoleLabel": vd.Session.User.RoleLabel(),
	}
	return s.render(ctx, http.StatusOK, tmplProfile, vd)
}

func (s *Server) teacherCalendar(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Calendar")
	vd.Data = map[string]interface{}{
		"Week": weekOf(nowFunc(), vd.Locale),
	}
	return s.render(ctx, http.StatusOK, tmplTeacherCalendar, vd)
}

func (s *Server) studentBookings(ctx echo.Context) error {
	vd := s.newViewData(ctx, "My bookings")
	return s.render(ctx, http.StatusOK, tmplStudentBookings, vd)
}

// weekOf lists the days of day's week, Monday first.
func weekOf(day time.Time, locale string) []calendarDay {
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	week := make([]calendarDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		week = append(week, calendarDay{
			Date:    d.Weekday().String() + ", " + utils.FormatDate(d, locale),
			IsToday: i == offset,
		})
	}
	return week
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}
