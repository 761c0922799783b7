package echoweb

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/contact"
	"github.com/lobitocorner/lobito/core/user"
	emailsvc "github.com/lobitocorner/lobito/services/email"
	logsvc "github.com/lobitocorner/lobito/services/logger"
	inmemdb "github.com/lobitocorner/lobito/storage/database/inmem"
	testutil "github.com/lobitocorner/lobito/tests"
)

const testPassword = "Lobito#2024x"

type testEnv struct {
	srv     *Server
	conf    *core.Config
	repo    user.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	logs    *bytes.Buffer
}

func setup(t *testing.T, opts ...func(*core.Config, *ServerDeps)) *testEnv {
	t.Helper()

	conf := core.NewTestConfig()
	var logs bytes.Buffer
	logger := logsvc.NewRollbarLogger(log.New(&logs, "", 0), conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	repo := inmemdb.NewUserRepository(inmemdb.Open())
	mailSvc := emailsvc.NewConsoleServiceMock()
	deps := ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    user.NewService(repo, mailSvc, conf),
		ContactSvc: contact.NewService(mailSvc, conf),
		Validate:   validate,
		Translator: translator,
	}
	for _, opt := range opts {
		opt(conf, &deps)
	}

	srv, err := NewServer(deps)
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	return &testEnv{srv: srv, conf: conf, repo: repo, mailSvc: mailSvc, logs: &logs}
}

func (env *testEnv) createUser(t *testing.T, name, uname string, isActive bool, roles ...string) user.User {
	t.Helper()
	return testutil.CreateUser(t, env.repo, uuid.NewString(), name, uname, uname+"@lobito.ao", testPassword, roles, isActive)
}

func (env *testEnv) sessionCookie(t *testing.T, usr user.User) *http.Cookie {
	t.Helper()
	token, err := env.srv.auth.GenerateToken(env.srv.auth.claimsFor(usr))
	if err != nil {
		t.Fatalf("sessionCookie() failed: %v", err)
	}
	return &http.Cookie{Name: env.conf.Server.CookieName, Value: token}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return env.do(req)
}

func (env *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return env.do(req)
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("parseHTML() failed: %v", err)
	}
	return doc
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// slowUserService blocks user lookups until release is closed.
type slowUserService struct {
	user.Service
	release chan struct{}
}

func (svc *slowUserService) GetByID(ctx context.Context, id string) (user.User, error) {
	<-svc.release
	return svc.Service.GetByID(ctx, id)
}
