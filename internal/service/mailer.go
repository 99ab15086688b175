// Package service contains the mail dispatcher and the background
// sweeps that run next to the HTTP API
package service

import (
	"errors"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends mail through the SMTP relay from the config.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer() *SMTPMailer {
	from := viper.GetString("smtp.from")

	return &SMTPMailer{
		dialer: gomail.NewDialer(
			viper.GetString("smtp.host"),
			viper.GetInt("smtp.port"),
			from,
			viper.GetString("smtp.password"),
		),
		from: from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if to == m.from {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
