package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
)

type navRecorder struct {
	paths []string
}

func (n *navRecorder) Replace(path string) { n.paths = append(n.paths, path) }

func TestBookingsRedirector(t *testing.T) {
	tests := []struct {
		name  string
		snaps []Snapshot
		want  []string
	}{
		{
			name:  "loading never navigates",
			snaps: []Snapshot{{Loading: true}, {Loading: true, User: teacher}, {Loading: true, User: both}},
		},
		{
			name:  "teacher",
			snaps: []Snapshot{{Loading: true}, {User: teacher}},
			want:  []string{core.Route(core.RouteTeacherCalendar)},
		},
		{
			name:  "teacher wins over student",
			snaps: []Snapshot{{Loading: true}, {User: both}},
			want:  []string{core.Route(core.RouteTeacherCalendar)},
		},
		{
			name:  "student",
			snaps: []Snapshot{{Loading: true}, {User: student}},
			want:  []string{core.Route(core.RouteStudentBookings)},
		},
		{
			name:  "no role",
			snaps: []Snapshot{{Loading: true}, {User: nobody}},
		},
		{
			name:  "anonymous",
			snaps: []Snapshot{{Loading: true}, {}},
		},
		{
			name:  "already resolved on first observation",
			snaps: []Snapshot{{User: student}},
			want:  []string{core.Route(core.RouteStudentBookings)},
		},
		{
			name:  "repeated resolved snapshots navigate once",
			snaps: []Snapshot{{Loading: true}, {User: teacher}, {User: teacher}, {User: student}},
			want:  []string{core.Route(core.RouteTeacherCalendar)},
		},
		{
			name:  "each pending to resolved transition navigates once",
			snaps: []Snapshot{{Loading: true}, {User: teacher}, {Loading: true}, {User: student}},
			want:  []string{core.Route(core.RouteTeacherCalendar), core.Route(core.RouteStudentBookings)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := new(navRecorder)
			r := NewBookingsRedirector(nav)
			for _, s := range tt.snaps {
				r.Observe(s)
			}
			assert.Equal(t, tt.want, nav.paths)

			target, ok := r.Target()
			assert.Equal(t, len(tt.want) > 0, ok)
			if ok {
				assert.Equal(t, tt.want[len(tt.want)-1], target)
			}
		})
	}
}

func TestRedirectorWithoutNavigator(t *testing.T) {
	tests := []struct {
		name   string
		snap   Snapshot
		want   string
		wantOK bool
	}{
		{name: "loading", snap: Snapshot{Loading: true}},
		{name: "anonymous", snap: Snapshot{}},
		{name: "teacher", snap: Snapshot{User: teacher}, want: "/teacher/calendar", wantOK: true},
		{name: "student", snap: Snapshot{User: student}, want: "/student/bookings", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBookingsRedirector(nil)
			r.Observe(tt.snap)
			target, ok := r.Target()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, target)
		})
	}
}

func TestRedirectorAttach(t *testing.T) {
	p := NewProvider()
	var paths []string
	r := NewBookingsRedirector(NavigatorFunc(func(path string) { paths = append(paths, path) }))
	detach := r.Attach(p)

	assert.Empty(t, paths)
	p.Resolve(&user.User{Roles: []string{user.RoleTeacher}})
	assert.Equal(t, []string{"/teacher/calendar"}, paths)

	detach()
	p.reset()
	p.Resolve(&user.User{Roles: []string{user.RoleStudent}})
	assert.Equal(t, []string{"/teacher/calendar"}, paths)
}
