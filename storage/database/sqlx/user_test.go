package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobitocorner/lobito/core/user"
	testutil "github.com/lobitocorner/lobito/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.PrepareDB(t))

	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ana := testutil.CreateUser(t, repo, uuid.NewString(), "Ana Teacher", "ana", "ana@lobito.ao", "Passw0rd!", []string{user.RoleTeacher}, true, t0)
	joao := testutil.CreateUser(t, repo, uuid.NewString(), "João Student", "joao", "joao@lobito.ao", "", []string{user.RoleStudent}, true, t0.Add(time.Hour))
	rui := testutil.CreateUser(t, repo, uuid.NewString(), "Rui Both", "rui", "rui@lobito.ao", "", []string{user.RoleStudent, user.RoleTeacher}, false, t0.Add(2*time.Hour))
	boss := testutil.CreateUser(t, repo, uuid.NewString(), "Boss", "boss", "boss@lobito.ao", "", []string{user.RoleAdminOwner}, true, t0.Add(3*time.Hour))

	t.Run("CheckUniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrUsernameExists, repo.CheckUniqueness(ctx, "ana", "other@lobito.ao"))
		assert.Equal(t, user.ErrEmailExists, repo.CheckUniqueness(ctx, "other", "ana@lobito.ao"))
		assert.NoError(t, repo.CheckUniqueness(ctx, "ana", "ana@lobito.ao", ana))
		assert.NoError(t, repo.CheckUniqueness(ctx, "new", "new@lobito.ao"))
	})

	t.Run("CreateUser duplicate", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, user.User{ID: uuid.NewString(), Username: "joao", Email: "x@lobito.ao", CreatedAt: t0, UpdatedAt: t0})
		assert.Equal(t, user.ErrUsernameExists, err)
	})

	t.Run("GetUser", func(t *testing.T) {
		got, err := repo.GetUser(ctx, user.GetFilter{ID: ana.ID})
		require.NoError(t, err)
		assert.Equal(t, "ana", got.Username)
		assert.Equal(t, []string{user.RoleTeacher}, got.Roles)
		assert.True(t, got.CreatedAt.Equal(t0))
		assert.True(t, got.LastLogin.IsZero())
		assert.NoError(t, got.CheckPassword("Passw0rd!"))

		got, err = repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "joao@lobito.ao"})
		require.NoError(t, err)
		assert.Equal(t, joao.ID, got.ID)

		got, err = repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "rui"})
		require.NoError(t, err)
		assert.Equal(t, rui.ID, got.ID)
		assert.False(t, got.IsActive)

		_, err = repo.GetUser(ctx, user.GetFilter{ID: uuid.NewString()})
		assert.Equal(t, user.ErrNotFound, err)
		_, err = repo.GetUser(ctx, user.GetFilter{})
		assert.Equal(t, user.ErrNotFound, err)
	})

	active := true
	tests := []struct {
		name   string
		filter user.QueryFilter
		want   []string
	}{
		{name: "all", filter: user.QueryFilter{}, want: []string{"ana", "joao", "rui", "boss"}},
		{name: "search name", filter: user.QueryFilter{Search: "STUDENT"}, want: []string{"joao"}},
		{name: "search email", filter: user.QueryFilter{Search: "rui@"}, want: []string{"rui"}},
		{name: "teachers", filter: user.QueryFilter{Roles: user.TeacherRoles}, want: []string{"ana", "rui"}},
		{name: "admins by prefix", filter: user.QueryFilter{Roles: []string{user.RoleAdmin}}, want: []string{"boss"}},
		{name: "active students", filter: user.QueryFilter{Roles: user.StudentRoles, IsActive: &active}, want: []string{"joao"}},
	}
	for _, tt := range tests {
		t.Run("QueryUsers "+tt.name, func(t *testing.T) {
			users, err := repo.QueryUsers(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(users))
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("UpdateUser", func(t *testing.T) {
		login := t0.Add(24 * time.Hour)
		boss.Name = "The Boss"
		boss.LastLogin = login
		_, err := repo.UpdateUser(ctx, boss)
		require.NoError(t, err)

		got, err := repo.GetUser(ctx, user.GetFilter{ID: boss.ID})
		require.NoError(t, err)
		assert.Equal(t, "The Boss", got.Name)
		assert.True(t, got.LastLogin.Equal(login))

		_, err = repo.UpdateUser(ctx, user.User{ID: uuid.NewString()})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("QueryUsers search is literal and case insensitive", func(t *testing.T) {
		testutil.CreateUser(t, repo, uuid.NewString(), "Kimba", "KIMBA_1", "Kimba.100%@Lobito.AO", "", []string{user.RoleStudent}, true, t0.Add(4*time.Hour))

		tests := []struct {
			search string
			want   []string
		}{
			{search: "kimba_", want: []string{"KIMBA_1"}},
			{search: "KIMBA.100%@lobito", want: []string{"KIMBA_1"}},
			{search: "_", want: []string{"KIMBA_1"}},
			{search: "%", want: []string{"KIMBA_1"}},
			{search: "a_t", want: []string{}},
			{search: `\`, want: []string{}},
			{search: "ana%", want: []string{}},
		}
		for _, tt := range tests {
			users, err := repo.QueryUsers(ctx, user.QueryFilter{Search: tt.search})
			require.NoError(t, err, tt.search)
			got := make([]string, 0, len(users))
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tt.want, got, tt.search)
		}
	})
}
