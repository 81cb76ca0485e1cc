package mailer

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
)

// Sender is the narrow surface the session service depends on. The
// SMTP transport is a collaborator, not part of the auth core.
type Sender interface {
	SendPasswordReset(to, resetURL string) error
}

type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

func (s *SMTPSender) SendPasswordReset(to, resetURL string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Restablecer contraseña")

	text := fmt.Sprintf(
		"Recibimos una solicitud para restablecer tu contraseña.\n\n"+
			"Abre este enlace dentro de la próxima hora:\n%s\n\n"+
			"Si no fuiste tú, ignora este correo.\n", resetURL)
	html := fmt.Sprintf(
		`<p>Recibimos una solicitud para restablecer tu contraseña.</p>`+
			`<p><a href="%s">Restablecer contraseña</a></p>`+
			`<p>Si no fuiste tú, ignora este correo.</p>`, resetURL)

	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}

	return d.DialAndSend(m)
}
