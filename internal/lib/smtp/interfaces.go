// Package smtp отправляет письма-напоминания об окончании подписки.
package smtp

import "io"

// Client представляет одну SMTP-сессию отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// MailTransport устанавливает SMTP-соединения для рассылки напоминаний.
type MailTransport interface {
	Connect() (Client, error)
	From() string
}
