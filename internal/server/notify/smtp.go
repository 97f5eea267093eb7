package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
)

// SMTPNotifier sends mail over SMTP with implicit TLS (port 465 style).
type SMTPNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPNotifier(host, port, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) (string, error) {
	msgID := uuid.NewString()

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", n.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			fmt.Sprintf("Message-ID: <%s@calcpay>\r\n", msgID) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := n.host + ":" + n.port

	tlsConfig := &tls.Config{
		ServerName: n.host,
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.host)
	if err != nil {
		return "", err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.username, n.password, n.host)
	if err := client.Auth(auth); err != nil {
		return "", err
	}

	if err := client.Mail(n.from); err != nil {
		return "", err
	}
	if err := client.Rcpt(to); err != nil {
		return "", err
	}

	w, err := client.Data()
	if err != nil {
		return "", err
	}
	if _, err := w.Write(msg); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return msgID, nil
}
