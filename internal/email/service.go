package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, appointment *model.Appointment) error
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	sender Sender
	from   string
}

// NewSMTPService sends mail through the SMTP server described by cfg.
func NewSMTPService(cfg Config) Service {
	return NewService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewService(sender Sender, from string) Service {
	return &smtpService{sender: sender, from: from}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<p>Hello {{.ClientName}},</p>
<p>Your appointment{{if .StaffName}} with {{.StaffName}}{{end}} is scheduled for {{.Date}} at {{.Time}}.</p>
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
<p>If you need to reschedule, please contact the clinic.</p>`))

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, a *model.Appointment) error {
	if a.ClientEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body strings.Builder
	if err := confirmationTmpl.Execute(&body, a); err != nil {
		return fmt.Errorf("failed to render confirmation: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", a.ClientEmail)
	m.SetHeader("Subject", fmt.Sprintf("Appointment confirmation for %s", a.Date))
	m.SetBody("text/html", body.String())

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", a.ClientEmail, err)
	}
	return nil
}

type nopService struct{}

func (nopService) SendAppointmentConfirmation(context.Context, *model.Appointment) error { return nil }

// Nop returns a Service that sends nothing.
func Nop() Service {
	return nopService{}
}
