package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	usr := user.User{ID: "42", Username: "ana", Email: "ana@lobito.ao"}
	logger.Warn("email not sent", errors.New("no key"), usr)
	logger.Info("started")

	out := buf.String()
	assert.Contains(t, out, "[WARN] email not sent")
	assert.Contains(t, out, "no key")
	assert.Contains(t, out, "[INFO] started")
}

func TestRollbarLoggerPrepare(t *testing.T) {
	logger := &RollbarLogger{}
	usr := &user.User{ID: "42"}
	extra := map[string]interface{}{"path": "/bookings"}

	args := logger.prepare("msg", []interface{}{usr, extra, user.User{ID: "7"}})
	assert.Equal(t, []interface{}{"msg", extra}, args)
}
