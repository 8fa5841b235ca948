package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pennywiseapp/pennywise/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP. Configuration comes from the
// environment; failures are logged and returned to the caller.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = "no-reply@localhost"
		log.Warnf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("SMTP send error: %v", err)
	}
	return err
}

// SendWelcomeMail greets a freshly registered user. Best-effort, the signup
// flow never fails because of it.
func SendWelcomeMail(to string, name string) {
	if env.GetEnv("SMTP_HOST", "") == "" {
		return
	}
	body := fmt.Sprintf(
		"<h1>Welcome to PennyWise, %s!</h1>"+
			"<p>Your account is ready. Start tracking your expenses and keep your budget on course.</p>"+
			"<p>You are on the Free plan. Upgrade anytime to unlock PDF reports and CSV exports.</p>",
		name,
	)
	if err := SendMail(to, "Welcome to PennyWise", body); err != nil {
		log.Warnf("welcome mail to %s failed: %v", to, err)
	}
}
