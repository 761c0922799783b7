package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/contact"
)

const msgContactReceived = "Thanks! We received your message and sent you a confirmation email."

func registerContactPage(e *echo.Echo, s *Server, limit echo.MiddlewareFunc) {
	e.GET(core.Route(core.RouteContact), s.contactPage)
	e.POST(core.Route(core.RouteContact), s.submitContact, limit)
}

func (s *Server) contactPage(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Contact us")
	form := contact.Inquiry{}
	if snap := vd.Session; snap.IsAuthenticated() {
		form.Name, form.Email = snap.User.Name, snap.User.Email
	}
	vd.Form = form
	return s.render(ctx, http.StatusOK, tmplContact, vd)
}

func (s *Server) submitContact(ctx echo.Context) error {
	var inq contact.Inquiry
	if err := ctx.Bind(&inq); err != nil {
		return errors.Wrap(err, "binding to Inquiry")
	}
	vd := s.newViewData(ctx, "Contact us")

	if err := inq.Validate(s.deps.Validate); err != nil {
		msgs, ok := s.fieldErrors(err)
		if !ok {
			return errors.Wrap(err, "validating Inquiry")
		}
		vd.Errors = msgs
		vd.Form = inq
		return s.render(ctx, http.StatusBadRequest, tmplContact, vd)
	}

	inq.ReceivedAt = nowFunc()
	if err := s.deps.ContactSvc.Submit(ctx.Request().Context(), inq); err != nil {
		return errors.Wrap(err, "submitting inquiry")
	}
	vd.Flash = msgContactReceived
	vd.Form = contact.Inquiry{}
	return s.render(ctx, http.StatusOK, tmplContact, vd)
}
