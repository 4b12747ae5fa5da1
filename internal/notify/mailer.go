package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers events as plain-text emails over SMTP.
type Mailer struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

// Notify implements Notifier.
func (m *Mailer) Notify(_ context.Context, ev Event) error {
	subject, body := formatMail(ev)

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + ev.User.Email,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.Username != "" {
		host := m.Addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}

	if err := smtp.SendMail(m.Addr, auth, m.From, []string{ev.User.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", ev.User.Email, err)
	}
	return nil
}

func formatMail(ev Event) (subject, body string) {
	switch ev.Kind {
	case KindRequestCreated:
		subject = fmt.Sprintf("Issue request received: %s", ev.Book.Title)
		body = fmt.Sprintf("Hello %s,\n\nyour request for %q (ISBN %s) was recorded on %s.\nYou will be notified when the book is issued to you.\n",
			ev.User.DisplayName(), ev.Book.Title, ev.Book.ISBN, ev.RequestDate.Format("2006-01-02"))
	case KindLoanIssued:
		subject = fmt.Sprintf("Book issued: %s", ev.Book.Title)
		body = fmt.Sprintf("Hello %s,\n\n%q (ISBN %s) was issued to you on %s.\nIt is due back on %s.\n",
			ev.User.DisplayName(), ev.Book.Title, ev.Book.ISBN,
			ev.IssuedDate.Format("2006-01-02"), ev.DueDate.Format("2006-01-02"))
	default:
		subject = "Library notification"
		body = fmt.Sprintf("Hello %s,\n\nthere is an update regarding %q.\n", ev.User.DisplayName(), ev.Book.Title)
	}
	return subject, body
}
