package user

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/utils"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	TeacherRoles = []string{RoleTeacher}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	// SignupRoles are the roles a visitor may pick when registering, keyed by form value.
	SignupRoles = map[string]string{
		"student": RoleStudent,
		"teacher": RoleTeacher,
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	all = append(all, StudentRoles...)
	return all
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC; zero until the first login
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// RoleLabel is the display name of the user's most significant role.
func (u *User) RoleLabel() string {
	switch {
	case u.IsAdmin():
		return utils.Capitalize("admin")
	case u.IsTeacher():
		return utils.Capitalize("teacher")
	case u.IsStudent():
		return utils.Capitalize("student")
	}
	return utils.Capitalize("member")
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `form:"name" json:"name" validate:"required,max=120"`
	Username        string   `form:"username" json:"username" validate:"required,min=3,max=40,alphanum_"`
	Email           string   `form:"email" json:"email" validate:"required,simple_email"`
	Password        string   `form:"password" json:"password" validate:"required"`
	PasswordConfirm string   `form:"password_confirm" json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `form:"-" json:"roles" validate:"required,min=1,allroles"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

type ResetUserPassword struct {
	UID             string `form:"uid" json:"uid" validate:"required"`
	Token           string `form:"token" json:"token" validate:"required"`
	Password        string `form:"password" json:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type GetFilter struct {
	ID              string
	UsernameOrEmail string
}

type QueryFilter struct {
	Search   string
	Roles    []string
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// ErrorMessages returns the translated message of each failing field of a validation error,
// or false when err does not come from validation.
func ErrorMessages(err error, translator ut.Translator) (map[string]string, bool) {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return core.TranslateValidationErrors(vErr, translator), true
	case *core.ValidationError:
		return vErr.FieldMap(), true
	}
	return nil, false
}
