package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `form:"username" validate:"required,alphanum_"`
	Email    string `json:"email" validate:"required,simple_email"`
	Note     string `form:"-" json:"note" validate:"required"`
	Plain    string `validate:"required"`
}

func TestValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		in      signup
		wantErr map[string]string
	}{
		{
			name: "valid",
			in:   signup{Username: "joana_m", Email: "joana@lobito.ao", Note: "x", Plain: "y"},
		},
		{
			name: "all missing",
			in:   signup{},
			wantErr: map[string]string{
				"username": "this field is required",
				"email":    "this field is required",
				"note":     "this field is required",
				"Plain":    "this field is required",
			},
		},
		{
			name: "custom tags",
			in:   signup{Username: "joana-m", Email: "joana@lobito", Note: "x", Plain: "y"},
			wantErr: map[string]string{
				"username": "only alphanumeric characters and underscores are allowed",
				"email":    "enter a valid email address",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
			assert.Equal(t, tt.wantErr, TranslateValidationErrors(vErrs, translator))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(nil, FieldError{Field: "email", Error: "taken"})
	assert.Equal(t, "email: taken", err.Error())

	var vErr *ValidationError
	require.True(t, errors.As(errors.Wrap(err, "registering"), &vErr))
	assert.Equal(t, map[string]string{"email": "taken"}, vErr.FieldMap())

	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("stop"), "serving")))
	assert.False(t, IsShutdown(errors.New("stop")))
}
