package mailer

import (
	"bytes"
	"testing"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesEmbeddedTemplates(t *testing.T) {
	m, err := New(config.MailConfig{Host: "localhost", Port: 587, From: "no-reply@middn.io"})
	require.NoError(t, err)

	// 两个邮件模板都要可渲染
	var buf bytes.Buffer
	err = m.templates.ExecuteTemplate(&buf, "forgot-password.html", map[string]string{
		"title": "Forgot Password", "otp": "123456",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")

	buf.Reset()
	err = m.templates.ExecuteTemplate(&buf, "message.html", map[string]string{
		"title": "KYC Rejected", "message": "blurry document",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "blurry document")
}

func TestTemplates_EscapeHTML(t *testing.T) {
	m, err := New(config.MailConfig{})
	require.NoError(t, err)

	// 驳回原因来自请求体，模板渲染必须转义
	var buf bytes.Buffer
	err = m.templates.ExecuteTemplate(&buf, "message.html", map[string]string{
		"title": "t", "message": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>")
}
