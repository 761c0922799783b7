package utils

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idMu      sync.Mutex
	idEntropy = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// GenerateID returns a sortable id made of the current millisecond timestamp and a random suffix.
// Uniqueness is only probabilistic: use it for request ids and client-side keys, never for
// anything that must not collide.
func GenerateID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}
