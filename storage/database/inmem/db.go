// Package inmemdb keeps repositories in process memory. It backs tests and demo runs.
package inmemdb

import (
	"sync"

	"github.com/lobitocorner/lobito/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}
