// Package mailer 模板化事务邮件
//
// 模板内嵌在二进制中（embed），以命名模板 + 占位符映射渲染。
// 发送失败由调用方记录日志后吞掉：邮件不参与主流程的成败。
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/config"
)

//go:embed templates
var templateFiles embed.FS

// Mailer 事务邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to, subject, templateName string, data map[string]string) error
}

// SMTPMailer 基于 SMTP 的实现
type SMTPMailer struct {
	cfg       config.MailConfig
	templates *template.Template
}

// New 创建 SMTP 邮件客户端并解析全部内嵌模板
func New(cfg config.MailConfig) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, templates: tmpl}, nil
}

// Send 渲染命名模板并发送
func (m *SMTPMailer) Send(ctx context.Context, to, subject, templateName string, data map[string]string) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("mailer: render %s: %w", templateName, err)
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// NoOpMailer 测试与无邮件配置场景下的空实现
type NoOpMailer struct{}

func (NoOpMailer) Send(ctx context.Context, to, subject, templateName string, data map[string]string) error {
	return nil
}
