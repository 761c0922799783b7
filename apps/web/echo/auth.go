package echoweb

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
)

const (
	jwtAudience   = "Lobito Corner Web"
	bearerPrefix  = "Bearer "
	signingMethod = "HS256"
)

var errInvalidToken = errors.New("invalid session token")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Username     string   `json:"username,omitempty"`
	IsStudent    bool     `json:"is_student,omitempty"`
	IsTeacher    bool     `json:"is_teacher,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

type tokenAuth struct {
	key               []byte
	issuer            string
	cookieName        string
	secureCookie      bool
	expiration        time.Duration
	refreshExpiration time.Duration
}

func newTokenAuth(conf *core.Config) *tokenAuth {
	return &tokenAuth{
		key:               []byte(conf.SecretKey),
		issuer:            conf.AppName,
		cookieName:        conf.Server.CookieName,
		secureCookie:      !conf.Debug && !conf.TestMode,
		expiration:        conf.Server.JWTExpirationDelta,
		refreshExpiration: conf.Server.JWTRefreshExpirationDelta,
	}
}

// claimsFor builds the claims of a fresh token for usr. origIat carries over the first issue time
// when refreshing.
func (a *tokenAuth) claimsFor(usr user.User, origIat ...int64) *Claims {
	now := nowFunc()
	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
		IsAdmin:      usr.IsAdmin(),
		Roles:        usr.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (a *tokenAuth) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims)
	ss, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *tokenAuth) parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{signingMethod}))
	if err != nil {
		return nil, errors.Wrap(errInvalidToken, err.Error())
	}
	if !claims.VerifyAudience(jwtAudience, true) {
		return nil, errInvalidToken
	}
	return claims, nil
}

// tokenFromRequest reads the session cookie, then the Authorization header.
func (a *tokenAuth) tokenFromRequest(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if hdr := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(hdr, bearerPrefix) {
		return strings.TrimPrefix(hdr, bearerPrefix)
	}
	return ""
}

// shouldRefresh reports whether claims are past half their lifetime but still within the refresh window.
func (a *tokenAuth) shouldRefresh(claims *Claims) bool {
	now := nowFunc()
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(now) > a.expiration/2 {
		return false
	}
	return now.Before(time.Unix(claims.OrigIssuedAt, 0).Add(a.refreshExpiration))
}

// login issues a session cookie for usr.
func (a *tokenAuth) login(ctx echo.Context, usr user.User, origIat ...int64) error {
	token, err := a.GenerateToken(a.claimsFor(usr, origIat...))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  nowFunc().Add(a.expiration),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *tokenAuth) logout(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
