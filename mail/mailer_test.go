package mail

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_VerifyMail(t *testing.T) {
	t.Parallel()

	html, err := RenderTemplate(filepath.Join("..", "mails", "verify-mail.html"), map[string]interface{}{
		"Name":           "A",
		"ActivationCode": "1234",
	})
	require.NoError(t, err)
	require.Contains(t, html, "Hello A")
	require.Contains(t, html, "1234")
}

func TestRenderTemplate_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := RenderTemplate(filepath.Join("..", "mails", "does-not-exist.html"), nil)
	require.Error(t, err)
}
