package echoweb

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
)

var (
	errForbidden       = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
)

func isAPIRequest(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api/")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors:
// JSON under /api, an HTML error page elsewhere.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{
				"path":       ctx.Request().URL.Path,
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
			}}
			if snap := snapshotFrom(ctx); snap.IsAuthenticated() {
				args = append(args, snap.User)
			}
			logger.Error(fmt.Sprintf("%s: %v", msg, err), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else if isAPIRequest(ctx) {
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		} else {
			err = renderErrorPage(ctx, code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func renderErrorPage(ctx echo.Context, code int, message interface{}) error {
	vd := &viewData{
		Title:     http.StatusText(code),
		AppName:   core.Meta.Name,
		Path:      ctx.Request().URL.Path,
		RequestID: ctx.Response().Header().Get(echo.HeaderXRequestID),
		Session:   snapshotFrom(ctx),
		Data: map[string]interface{}{
			"Code":    code,
			"Message": fmt.Sprint(message),
		},
	}
	if err := ctx.Render(code, tmplError, vd); err != nil {
		return ctx.String(code, fmt.Sprint(message))
	}
	return nil
}
