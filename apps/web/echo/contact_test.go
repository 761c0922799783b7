package echoweb

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
)

func TestContactPage(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Ana Teacher", "ana", true, user.RoleTeacher)

	rec := env.get("/contact", env.sessionCookie(t, usr))
	require.Equal(t, http.StatusOK, rec.Code)
	email, _ := parseHTML(t, rec).Find(`input[name="email"]`).Attr("value")
	assert.Equal(t, "ana@lobito.ao", email)

	rec = env.postForm("/contact", url.Values{"name": {"Rui"}, "email": {"rui@lobito"}, "message": {"Hello"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "enter a valid email address", doc.Find(`.error[data-field="email"]`).Text())
	assert.Equal(t, "Hello", doc.Find(`textarea[name="message"]`).Text())
	assert.Empty(t, env.mailSvc.SentMessages())

	rec = env.postForm("/contact", url.Values{"name": {"Rui"}, "email": {"rui@lobito.ao"}, "message": {"Do you teach chemistry?"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgContactReceived, parseHTML(t, rec).Find(".flash").Text())

	// acknowledgement to the sender, then one staff digest after the quiet window
	require.Eventually(t, func() bool { return len(env.mailSvc.SentMessages()) == 2 }, time.Second, 10*time.Millisecond)
	sent := env.mailSvc.SentMessages()
	assert.Equal(t, "rui@lobito.ao", sent[0].To[0].Address)
	assert.Equal(t, env.conf.Email.StaffAddress, sent[1].To[0].Address)
}

func TestContactRateLimit(t *testing.T) {
	env := setup(t, func(conf *core.Config, _ *ServerDeps) {
		conf.Server.FormRateLimit = 0.001
		conf.Server.FormRateBurst = 1
	})
	form := url.Values{"name": {"Rui"}, "email": {"rui@lobito.ao"}, "message": {"Hi"}}

	rec := env.postForm("/contact", form)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.postForm("/contact", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "429", parseHTML(t, rec).Find("#error-code").Text())

	// pages stay reachable
	rec = env.get("/contact")
	assert.Equal(t, http.StatusOK, rec.Code)
}
