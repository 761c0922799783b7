package echoweb

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/session"
	"github.com/lobitocorner/lobito/core/utils"
)

const (
	pagesDir     = "templates/pages"
	baseTemplate = "_base.gohtml"
)

// page template names
const (
	tmplHome                 = "home"
	tmplLogin                = "login"
	tmplRegister             = "register"
	tmplPasswordReset        = "password_reset"
	tmplPasswordResetConfirm = "password_reset_confirm"
	tmplContact              = "contact"
	tmplDashboard            = "dashboard"
	tmplWaiting              = "waiting"
	tmplTeacherCalendar      = "teacher_calendar"
	tmplStudentBookings      = "student_bookings"
	tmplProfile              = "profile"
	tmplError                = "error"
)

var funcs = template.FuncMap{
	"route":          routePath,
	"formatDate":     func(t time.Time, locale string) string { return utils.FormatDate(t, locale) },
	"formatCurrency": utils.FormatCurrency,
	"truncate":       utils.Truncate,
	"capitalize":     utils.Capitalize,
	"year":           func() int { return nowFunc().Year() },
}

// routePath fails template execution on unknown route names instead of panicking.
func routePath(name string) (string, error) {
	if p, ok := core.LookupRoute(name); ok {
		return p, nil
	}
	return "", errors.Errorf("unknown route %q", name)
}

type (
	renderer struct {
		templates map[string]*template.Template
	}

	// viewData is what every page template receives.
	viewData struct {
		Title     string
		AppName   string
		Path      string
		Locale    string
		RequestID string
		Session   session.Snapshot
		Flash     string
		Errors    map[string]string
		Form      interface{}
		Data      interface{}
		Refresh   int // seconds; reloads the page when > 0
	}
)

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(fsys fs.FS, dir string) (*renderer, error) {
	fps, err := fs.Glob(fsys, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	r := &renderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.New(fname).Funcs(funcs).ParseFS(fsys, path.Join(dir, baseTemplate), fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fname)
		}
		r.templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("page template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// newViewData fills the fields shared by every page.
func (s *Server) newViewData(ctx echo.Context, title string) *viewData {
	return &viewData{
		Title:     title,
		AppName:   core.Meta.Name,
		Path:      ctx.Request().URL.Path,
		Locale:    ctx.Request().Header.Get("Accept-Language"),
		RequestID: ctx.Response().Header().Get(echo.HeaderXRequestID),
		Session:   snapshotFrom(ctx),
	}
}

func (s *Server) render(ctx echo.Context, code int, name string, vd *viewData) error {
	if err := ctx.Render(code, name, vd); err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}
	return nil
}
