package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
)

const (
	msgPasswordResetSent = "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."
	msgPasswordResetDone = "Your password has been reset. You can sign in with the new password."
	msgLoggedOut         = "You have been signed out."
)

type (
	loginForm struct {
		Username string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
		Next     string `form:"next"`
	}

	passwordResetForm struct {
		Email string `form:"email" validate:"required,simple_email"`
	}
)

func registerUserPages(e *echo.Echo, s *Server, limit echo.MiddlewareFunc) {
	e.GET(core.Route(core.RouteLogin), s.loginPage)
	e.POST(core.Route(core.RouteLogin), s.login, limit)
	e.GET(core.Route(core.RouteLogout), s.logout)
	e.POST(core.Route(core.RouteLogout), s.logout)
	e.GET(core.Route(core.RouteRegister), s.registerPage)
	e.POST(core.Route(core.RouteRegister), s.register, limit)
	e.GET(core.Route(core.RouteForgotPassword), s.passwordResetPage)
	e.POST(core.Route(core.RouteForgotPassword), s.requestPasswordReset, limit)
	e.GET(core.Route(core.RouteResetPassword), s.passwordResetConfirmPage)
	e.POST(core.Route(core.RouteResetPassword), s.confirmPasswordReset, limit)
}

// fieldErrors returns the per-field messages of a validation error, false for any other error.
func (s *Server) fieldErrors(err error) (map[string]string, bool) {
	return user.ErrorMessages(err, s.deps.Translator)
}

func (s *Server) loginPage(ctx echo.Context) error {
	snap := snapshotFrom(ctx)
	if snap.IsAuthenticated() {
		return ctx.Redirect(http.StatusFound, safeNext(ctx.QueryParam("next")))
	}
	vd := s.newViewData(ctx, "Sign in")
	vd.Form = loginForm{Next: ctx.QueryParam("next")}
	switch {
	case ctx.QueryParam("reset") != "":
		vd.Flash = msgPasswordResetDone
	case ctx.QueryParam("bye") != "":
		vd.Flash = msgLoggedOut
	}
	return s.render(ctx, http.StatusOK, tmplLogin, vd)
}

func (s *Server) login(ctx echo.Context) error {
	var form loginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to loginForm")
	}
	vd := s.newViewData(ctx, "Sign in")
	vd.Form = loginForm{Username: form.Username, Next: form.Next}

	if err := s.deps.Validate.Struct(form); err != nil {
		msgs, ok := s.fieldErrors(err)
		if !ok {
			return errors.Wrap(err, "validating loginForm")
		}
		vd.Errors = msgs
		return s.render(ctx, http.StatusBadRequest, tmplLogin, vd)
	}

	usr, err := s.deps.UserSvc.Authenticate(ctx.Request().Context(), form.Username, form.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrAuthenticationFailed, user.ErrAccountDeactivated:
			vd.Flash = errors.Cause(err).Error()
			return s.render(ctx, http.StatusBadRequest, tmplLogin, vd)
		}
		return errors.Wrap(err, "authenticating")
	}
	if err = s.auth.login(ctx, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, safeNext(form.Next))
}

func (s *Server) logout(ctx echo.Context) error {
	s.auth.logout(ctx)
	return ctx.Redirect(http.StatusFound, core.Route(core.RouteLogin)+"?bye=1")
}

func (s *Server) registerPage(ctx echo.Context) error {
	if snapshotFrom(ctx).IsAuthenticated() {
		return ctx.Redirect(http.StatusFound, core.Route(core.RouteDashboard))
	}
	vd := s.newViewData(ctx, "Create an account")
	vd.Form = map[string]string{"Role": "student"}
	return s.render(ctx, http.StatusOK, tmplRegister, vd)
}

func (s *Server) register(ctx echo.Context) error {
	var nu user.NewUser
	if err := ctx.Bind(&nu); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	role := ctx.FormValue("role")
	if r, ok := user.SignupRoles[role]; ok {
		nu.Roles = []string{r}
	}

	if err := nu.Validate(ctx.Request().Context(), s.deps.Validate, s.deps.UserSvc); err != nil {
		msgs, ok := s.fieldErrors(err)
		if !ok {
			return errors.Wrap(err, "validating NewUser")
		}
		if msg, ok := msgs["roles"]; ok {
			msgs["role"] = msg
		}
		vd := s.newViewData(ctx, "Create an account")
		vd.Errors = msgs
		vd.Form = map[string]string{"Name": nu.Name, "Username": nu.Username, "Email": nu.Email, "Role": role}
		return s.render(ctx, http.StatusBadRequest, tmplRegister, vd)
	}

	usr, err := s.deps.UserSvc.Register(ctx.Request().Context(), nu)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	if err = s.auth.login(ctx, usr); err != nil {
		return err
	}
	// the bookings page forwards to the role's own page
	return ctx.Redirect(http.StatusFound, core.Route(core.RouteBookings))
}

func (s *Server) passwordResetPage(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Forgot your password?")
	vd.Form = passwordResetForm{}
	return s.render(ctx, http.StatusOK, tmplPasswordReset, vd)
}

func (s *Server) requestPasswordReset(ctx echo.Context) error {
	var form passwordResetForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to passwordResetForm")
	}
	form.Email = core.CleanString(form.Email, true /* lower */)
	vd := s.newViewData(ctx, "Forgot your password?")
	vd.Form = form

	if err := s.deps.Validate.Struct(form); err != nil {
		msgs, ok := s.fieldErrors(err)
		if !ok {
			return errors.Wrap(err, "validating passwordResetForm")
		}
		vd.Errors = msgs
		return s.render(ctx, http.StatusBadRequest, tmplPasswordReset, vd)
	}

	err := s.deps.UserSvc.RequestPasswordReset(ctx.Request().Context(), form.Email)
	if cause := errors.Cause(err); !(cause == nil || cause == user.ErrNotFound || cause == user.ErrAccountDeactivated) {
		// do not return errors to attackers
		s.deps.Logger.Error(fmt.Sprintf("requesting password reset: %v", err), err)
	}
	vd.Flash = msgPasswordResetSent
	vd.Form = passwordResetForm{}
	return s.render(ctx, http.StatusOK, tmplPasswordReset, vd)
}

func (s *Server) passwordResetConfirmPage(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Choose a new password")
	vd.Form = user.ResetUserPassword{UID: ctx.QueryParam("uid"), Token: ctx.QueryParam("token")}
	return s.render(ctx, http.StatusOK, tmplPasswordResetConfirm, vd)
}

func (s *Server) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	vd := s.newViewData(ctx, "Choose a new password")
	vd.Form = user.ResetUserPassword{UID: data.UID, Token: data.Token}

	err := data.Validate(s.deps.Validate)
	if err == nil {
		err = s.deps.UserSvc.ResetPassword(ctx.Request().Context(), data)
	}
	if err != nil {
		msgs, ok := s.fieldErrors(err)
		if !ok {
			return errors.Wrap(err, "resetting password")
		}
		if len(msgs) == 0 {
			vd.Flash = errors.Cause(err).Error()
		}
		vd.Errors = msgs
		return s.render(ctx, http.StatusBadRequest, tmplPasswordResetConfirm, vd)
	}
	return ctx.Redirect(http.StatusFound, core.Route(core.RouteLogin)+"?reset=1")
}
