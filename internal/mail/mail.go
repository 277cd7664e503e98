// Package mail renders and sends notification mails.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/simp-lee/colocmatching/internal/event"
)

// Template names.
const (
	TemplateRegistration       = "registration_confirmation"
	TemplateInvitationReceived = "invitation_received"
	TemplateInvitationAnswered = "invitation_answered"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Sender delivers messages; *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Counter records mail attempts.
type Counter interface {
	MailSent(template string, err error)
}

// Config holds the sender identity and link base.
type Config struct {
	Enabled bool
	From    string
	BaseURL string
}

// Manager renders templates and hands messages to a Sender. When disabled
// it logs the rendered message instead.
type Manager struct {
	cfg       Config
	sender    Sender
	logger    *slog.Logger
	counter   Counter
	templates map[string]*template.Template
}

// NewDialer returns an SMTP dialer.
func NewDialer(host string, port int, username, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, username, password)
}

// NewManager parses the embedded templates.
func NewManager(cfg Config, sender Sender, logger *slog.Logger, counter Counter) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	templates, err := parseTemplates(templateFS)
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, sender: sender, logger: logger, counter: counter, templates: templates}, nil
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.Glob(fsys, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("glob mail templates: %w", err)
	}
	funcs := template.FuncMap{
		"lower": strings.ToLower,
		"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".tmpl")
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("parse mail template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// Render executes the subject and body of the named template.
func (m *Manager) Render(name string, data any) (subject, body string, err error) {
	t, ok := m.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", name)
	}
	var sb, bb bytes.Buffer
	if err := t.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.ExecuteTemplate(&bb, "body", data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), strings.TrimLeft(bb.String(), "\n"), nil
}

// Send renders the named template and mails it to the recipient.
func (m *Manager) Send(ctx context.Context, to, toName, name string, data any) error {
	subject, body, err := m.Render(name, data)
	if err != nil {
		return err
	}

	if !m.cfg.Enabled || m.sender == nil {
		m.logger.InfoContext(ctx, "mail not sent, delivery disabled", "template", name, "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	msg.SetHeader("From", m.cfg.From)
	msg.SetAddressHeader("To", to, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	err = m.sender.DialAndSend(msg)
	if m.counter != nil {
		m.counter.MailSent(name, err)
	}
	if err != nil {
		return fmt.Errorf("send %s mail: %w", name, err)
	}
	m.logger.InfoContext(ctx, "mail sent", "template", name, "to", to)
	return nil
}

type registrationData struct {
	Name      string
	BaseURL   string
	Token     string
	ExpiresAt time.Time
}

type invitationReceivedData struct {
	Name          string
	BaseURL       string
	SenderName    string
	SourceType    string
	InvitableType string
	InvitationID  uint
	Message       string
}

type invitationAnsweredData struct {
	Name          string
	BaseURL       string
	AnswererName  string
	Status        string
	InvitableType string
	InvitableID   uint
}

// Subscribe registers the notification handlers on d.
func (m *Manager) Subscribe(d *event.Dispatcher) {
	d.Subscribe(event.NameUserRegistered, func(ctx context.Context, e event.Event) error {
		ev := e.(event.UserRegistered)
		return m.Send(ctx, ev.Email, ev.DisplayName, TemplateRegistration, registrationData{
			Name:      ev.DisplayName,
			BaseURL:   m.cfg.BaseURL,
			Token:     ev.Token,
			ExpiresAt: ev.ExpiresAt,
		})
	})

	d.Subscribe(event.NameInvitationCreated, func(ctx context.Context, e event.Event) error {
		ev := e.(event.InvitationCreated)
		if ev.Notify.Email == "" {
			return nil
		}
		return m.Send(ctx, ev.Notify.Email, ev.Notify.Name, TemplateInvitationReceived, invitationReceivedData{
			Name:          ev.Notify.Name,
			BaseURL:       m.cfg.BaseURL,
			SenderName:    ev.Sender.Name,
			SourceType:    string(ev.SourceType),
			InvitableType: string(ev.InvitableType),
			InvitationID:  ev.InvitationID,
			Message:       ev.Message,
		})
	})

	d.Subscribe(event.NameInvitationAnswered, func(ctx context.Context, e event.Event) error {
		ev := e.(event.InvitationAnswered)
		if ev.Notify.Email == "" {
			return nil
		}
		return m.Send(ctx, ev.Notify.Email, ev.Notify.Name, TemplateInvitationAnswered, invitationAnsweredData{
			Name:          ev.Notify.Name,
			BaseURL:       m.cfg.BaseURL,
			AnswererName:  ev.Answerer.Name,
			Status:        string(ev.Status),
			InvitableType: string(ev.InvitableType),
			InvitableID:   ev.InvitableID,
		})
	})
}
