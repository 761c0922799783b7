package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEmailConfig(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"absent", "", false},
		{"placeholder", PlaceholderEmailAPIKey, false},
		{"real key", "SG.abc123.def456", true},
		{"whitespace counts as a value", " ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := CheckEmailConfig(tt.key)
			assert.Equal(t, tt.want, status.Configured)
			assert.NotEmpty(t, status.Message)
		})
	}
}

func TestEmailMessageRender(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{To: []mail.Address{{Address: "a@b.co"}}, BodyStr: "hello"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.True(t, msg.HasRecipients())
		assert.True(t, msg.HasContent())
	})

	t.Run("template", func(t *testing.T) {
		msg := &EmailMessage{
			TemplateName: "welcome",
			TemplateData: map[string]interface{}{"Name": "Joana", "Role": "Student", "LoginURL": "https://lobitocorner.com/login"},
		}
		require.NoError(t, msg.Render())
		assert.Contains(t, msg.TextContent, "Hi Joana,")
		assert.Contains(t, msg.TextContent, "Your Student account is ready.")
		assert.Contains(t, msg.TextContent, "The "+Meta.Name+" team")
		assert.Contains(t, msg.HTMLContent, "Joana")
		assert.False(t, msg.HasRecipients())
	})

	t.Run("missing template data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "welcome", TemplateData: map[string]interface{}{}}
		assert.Error(t, msg.Render())
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "nope"}
		require.NoError(t, msg.Render())
		assert.False(t, msg.HasContent())
	})
}
