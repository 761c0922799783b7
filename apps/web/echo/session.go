package echoweb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/session"
	"github.com/lobitocorner/lobito/core/user"
)

const (
	ctxSessionKey = "session"
	ctxClaimsKey  = "claims"

	waitingRefreshSeconds = 1
)

// sessionMiddleware resolves the request's user asynchronously into a session.Provider and waits for it
// up to the configured deadline. Handlers see a Loading snapshot when the lookup is slower than that.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		p := session.NewProvider()
		ctx.Set(ctxSessionKey, p)
		ctx.SetRequest(req.WithContext(session.NewContext(req.Context(), p)))

		tokenStr := s.auth.tokenFromRequest(ctx)
		if tokenStr == "" {
			p.Resolve(nil)
			return next(ctx)
		}
		claims, err := s.auth.parse(tokenStr)
		if err != nil {
			s.auth.logout(ctx)
			p.Resolve(nil)
			return next(ctx)
		}
		ctx.Set(ctxClaimsKey, claims)

		p.Load(req.Context(), s.loadUser(claims.Subject))
		waitCtx, cancel := context.WithTimeout(req.Context(), s.deps.Conf.Server.SessionResolveTimeout)
		snap := p.Wait(waitCtx)
		cancel()

		if err = p.Err(); err != nil {
			s.deps.Logger.Error(fmt.Sprintf("resolving session: %v", err), err, map[string]interface{}{"subject": claims.Subject})
		}
		if snap.IsAuthenticated() && s.auth.shouldRefresh(claims) {
			if err = s.auth.login(ctx, *snap.User, claims.OrigIssuedAt); err != nil {
				return errors.Wrap(err, "refreshing session")
			}
		}
		return next(ctx)
	}
}

// loadUser finds the active user with id. Unknown or deactivated users are anonymous.
func (s *Server) loadUser(id string) session.Loader {
	return func(ctx context.Context) (*user.User, error) {
		usr, err := s.deps.UserSvc.GetByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return nil, nil
			}
			return nil, errors.Wrap(err, "finding user by ID")
		}
		if !usr.IsActive {
			return nil, nil
		}
		return &usr, nil
	}
}

func providerFrom(ctx echo.Context) *session.Provider {
	if p, ok := ctx.Get(ctxSessionKey).(*session.Provider); ok {
		return p
	}
	if p, ok := session.FromContext(ctx.Request().Context()); ok {
		return p
	}
	// outside the session middleware everyone is anonymous
	p := session.NewProvider()
	p.Resolve(nil)
	return p
}

func snapshotFrom(ctx echo.Context) session.Snapshot {
	return providerFrom(ctx).Snapshot()
}

// renderWaiting shows the neutral loading indicator; the page reloads itself until the session resolves.
func (s *Server) renderWaiting(ctx echo.Context) error {
	vd := s.newViewData(ctx, "Loading")
	vd.Refresh = waitingRefreshSeconds
	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return s.render(ctx, http.StatusOK, tmplWaiting, vd)
}

// requireAuth sends anonymous visitors to the login page, back to where they were afterwards.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		snap := snapshotFrom(ctx)
		if snap.Loading {
			return s.renderWaiting(ctx)
		}
		if !snap.IsAuthenticated() {
			q := make(url.Values)
			q.Set("next", ctx.Request().URL.RequestURI())
			return ctx.Redirect(http.StatusFound, core.Route(core.RouteLogin)+"?"+q.Encode())
		}
		return next(ctx)
	}
}

// requireRole rejects authenticated users whose session does not satisfy has.
func requireRole(has func(session.Snapshot) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !has(snapshotFrom(ctx)) {
				return errForbidden
			}
			return next(ctx)
		}
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return core.Route(core.RouteDashboard)
	}
	return next
}
