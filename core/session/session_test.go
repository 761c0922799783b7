package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobitocorner/lobito/core/user"
)

var (
	teacher = &user.User{ID: "t", Roles: []string{user.RoleTeacher}}
	student = &user.User{ID: "s", Roles: []string{user.RoleStudent}}
	both    = &user.User{ID: "b", Roles: []string{user.RoleStudent, user.RoleTeacher}}
	nobody  = &user.User{ID: "n"}
)

func TestSnapshotPredicates(t *testing.T) {
	tests := []struct {
		name                            string
		snap                            Snapshot
		authenticated, teacher, student bool
	}{
		{name: "loading", snap: Snapshot{Loading: true, User: both}},
		{name: "anonymous", snap: Snapshot{}},
		{name: "teacher", snap: Snapshot{User: teacher}, authenticated: true, teacher: true},
		{name: "student", snap: Snapshot{User: student}, authenticated: true, student: true},
		{name: "both", snap: Snapshot{User: both}, authenticated: true, teacher: true, student: true},
		{name: "no role", snap: Snapshot{User: nobody}, authenticated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.authenticated, tt.snap.IsAuthenticated())
			assert.Equal(t, tt.teacher, tt.snap.IsTeacher())
			assert.Equal(t, tt.student, tt.snap.IsStudent())
			assert.False(t, tt.snap.IsAdmin())
		})
	}
}

func TestProvider(t *testing.T) {
	p := NewProvider()
	assert.True(t, p.Snapshot().Loading)

	var (
		mu   sync.Mutex
		seen []Snapshot
	)
	unsubscribe := p.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	p.Resolve(student)
	p.reset()
	unsubscribe()
	p.Resolve(teacher)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, Snapshot{Loading: true}, seen[0])
	assert.Equal(t, Snapshot{User: student}, seen[1])
	assert.Equal(t, Snapshot{Loading: true}, seen[2])
	assert.Equal(t, Snapshot{User: teacher}, p.Snapshot())
}

func TestProviderUnsubscribe(t *testing.T) {
	t.Run("no call after unsubscribe returns", func(t *testing.T) {
		p := NewProvider()
		entered, release := make(chan struct{}), make(chan struct{})
		p.Subscribe(func(s Snapshot) {
			if !s.Loading {
				close(entered)
				<-release
			}
		})
		var calls atomic.Int32
		unsubscribe := p.Subscribe(func(Snapshot) { calls.Add(1) })

		resolved := make(chan struct{})
		go func() {
			p.Resolve(student)
			close(resolved)
		}()

		<-entered
		unsubscribe()
		before := calls.Load()
		close(release)
		<-resolved

		assert.Equal(t, int32(1), before)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("unsubscribe waits for a call in progress", func(t *testing.T) {
		p := NewProvider()
		entered, release := make(chan struct{}), make(chan struct{})
		var finished atomic.Bool
		unsubscribe := p.Subscribe(func(s Snapshot) {
			if !s.Loading {
				close(entered)
				<-release
				finished.Store(true)
			}
		})

		go p.Resolve(teacher)
		<-entered

		unsubscribed := make(chan struct{})
		go func() {
			unsubscribe()
			close(unsubscribed)
		}()

		select {
		case <-unsubscribed:
			t.Fatal("unsubscribe returned while the subscriber was running")
		case <-time.After(20 * time.Millisecond):
		}
		close(release)
		<-unsubscribed
		assert.True(t, finished.Load())
	})
}

func TestProviderLoad(t *testing.T) {
	t.Run("resolves with the loaded user", func(t *testing.T) {
		p := NewProvider()
		p.Load(context.Background(), func(context.Context) (*user.User, error) { return teacher, nil })
		snap := p.Wait(context.Background())
		assert.False(t, snap.Loading)
		assert.Equal(t, teacher, snap.User)
		assert.NoError(t, p.Err())
	})

	t.Run("resolves anonymous on error", func(t *testing.T) {
		p := NewProvider()
		lookupErr := errors.New("db down")
		p.Load(context.Background(), func(context.Context) (*user.User, error) { return teacher, lookupErr })
		snap := p.Wait(context.Background())
		assert.Equal(t, Snapshot{}, snap)
		assert.Equal(t, lookupErr, p.Err())
	})

	t.Run("wait gives up with the deadline", func(t *testing.T) {
		p := NewProvider()
		release := make(chan struct{})
		defer close(release)
		p.Load(context.Background(), func(context.Context) (*user.User, error) {
			<-release
			return student, nil
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.True(t, p.Wait(ctx).Loading)
	})
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := NewProvider()
	got, ok := FromContext(NewContext(context.Background(), p))
	assert.True(t, ok)
	assert.Same(t, p, got)
}
