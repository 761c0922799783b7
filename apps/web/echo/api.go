package echoweb

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/session"
	"github.com/lobitocorner/lobito/core/user"
)

type (
	sessionResponse struct {
		Loading       bool       `json:"loading"`
		Authenticated bool       `json:"authenticated"`
		IsTeacher     bool       `json:"is_teacher"`
		IsStudent     bool       `json:"is_student"`
		IsAdmin       bool       `json:"is_admin"`
		User          *user.User `json:"user"`
		Redirect      *string    `json:"redirect"` // where /bookings would send this session
	}

	tokenRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	tokenResponse struct {
		Token string `json:"token"`
	}

	healthResponse struct {
		Status string                 `json:"status"`
		Build  string                 `json:"build"`
		Email  core.EmailConfigStatus `json:"email"`
	}
)

var (
	errAuthRequired   = echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	errRefreshExpired = echo.NewHTTPError(http.StatusUnauthorized, "refresh has expired")
	errSessionPending = echo.NewHTTPError(http.StatusServiceUnavailable, "session not resolved yet, retry shortly")

	// apiRoles maps the role query parameter to stored role prefixes.
	apiRoles = map[string]string{
		"admin":   user.RoleAdmin,
		"teacher": user.RoleTeacher,
		"student": user.RoleStudent,
	}
)

func registerAPI(e *echo.Echo, s *Server, limit echo.MiddlewareFunc) {
	e.GET("/api/session", s.sessionInfo)
	e.POST("/api/auth/token", s.obtainToken, limit)
	e.POST("/api/auth/token-refresh", s.refreshToken, s.requireAPIAuth)
	e.GET("/api/users", s.queryUsers, s.requireAPIAuth, requireRole(session.Snapshot.IsAdmin))
	e.GET("/healthz", s.health)
}

// requireAPIAuth is requireAuth for JSON clients: no redirects, no waiting page.
func (s *Server) requireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		snap := snapshotFrom(ctx)
		if snap.Loading {
			ctx.Response().Header().Set("Retry-After", "1")
			return errSessionPending
		}
		if !snap.IsAuthenticated() {
			return errAuthRequired
		}
		return next(ctx)
	}
}

func (s *Server) sessionInfo(ctx echo.Context) error {
	snap := providerFrom(ctx).Snapshot()
	r := session.NewBookingsRedirector(nil)
	r.Observe(snap)

	var target *string
	if route, ok := r.Target(); ok {
		target = &route
	}

	return ctx.JSON(http.StatusOK, sessionResponse{
		Loading:       snap.Loading,
		Authenticated: snap.IsAuthenticated(),
		IsTeacher:     snap.IsTeacher(),
		IsStudent:     snap.IsStudent(),
		IsAdmin:       snap.IsAdmin(),
		User:          snap.User,
		Redirect:      target,
	})
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Build:  s.deps.Conf.Build,
		Email:  core.CheckEmailConfig(s.deps.Conf.Email.APIKey),
	})
}

func (s *Server) obtainToken(ctx echo.Context) error {
	var data tokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to tokenRequest")
	}
	if err := s.deps.Validate.Struct(data); err != nil {
		return err
	}

	usr, err := s.deps.UserSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrAuthenticationFailed, user.ErrAccountDeactivated:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := s.auth.GenerateToken(s.auth.claimsFor(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, tokenResponse{Token: token})
}

// refreshToken issues a new token keeping the original issue time, until the refresh window closes.
func (s *Server) refreshToken(ctx echo.Context) error {
	claims, ok := ctx.Get(ctxClaimsKey).(*Claims)
	if !ok {
		return errAuthRequired
	}
	if nowFunc().After(time.Unix(claims.OrigIssuedAt, 0).Add(s.auth.refreshExpiration)) {
		return errRefreshExpired
	}

	token, err := s.auth.GenerateToken(s.auth.claimsFor(*snapshotFrom(ctx).User, claims.OrigIssuedAt))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) queryUsers(ctx echo.Context) error {
	filter := user.QueryFilter{Search: ctx.QueryParam("search")}
	for _, name := range ctx.QueryParams()["role"] {
		role, ok := apiRoles[name]
		if !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role " + strconv.Quote(name)})
		}
		filter.Roles = append(filter.Roles, role)
	}
	if v := ctx.QueryParam("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "is_active", Error: "must be true or false"})
		}
		filter.IsActive = &active
	}

	users, err := s.deps.UserSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}
