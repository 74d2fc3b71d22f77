package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessagePlainText(t *testing.T) {
	msg := buildMessage("no-reply@worklane.dev", "user@example.com", "Hello", "plain body", "")

	assert.Contains(t, msg, "From: no-reply@worklane.dev\r\n")
	assert.Contains(t, msg, "To: user@example.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, `Content-Type: text/plain; charset="utf-8"`)
	assert.NotContains(t, msg, "Reply-To:")
	assert.Contains(t, msg, "\r\nplain body\r\n")
}

func TestBuildMessageDetectsHTML(t *testing.T) {
	msg := buildMessage("no-reply@worklane.dev", "user@example.com", "Hi", "<html><body>hi</body></html>", "support@worklane.dev")

	assert.Contains(t, msg, `Content-Type: text/html; charset="utf-8"`)
	assert.Contains(t, msg, "Reply-To: support@worklane.dev\r\n")
}
