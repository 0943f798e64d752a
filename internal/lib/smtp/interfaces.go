// Package smtp подключается к почтовому серверу для отправки уведомлений о подписках.
package smtp

import "io"

// Client подмножество *smtp.Client, нужное для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает сессию с SMTP сервером.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
