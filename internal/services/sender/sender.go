// Package sender отправляет письма пользователям по событиям жизненного цикла подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/lib/smtp"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// SenderService превращает события из очереди в письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// Handle разбирает сообщение из очереди и отправляет письмо нужного вида.
// Сообщения неизвестного вида пропускаются без ошибки, чтобы не зацикливать повторную доставку.
func (s *SenderService) Handle(body []byte) error {
	var event models.LifecycleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if event.Email == "" {
		s.log.Warn("lifecycle event without recipient", slog.String("kind", string(event.Kind)))
		return nil
	}

	subject, text, ok := compose(event)
	if !ok {
		s.log.Warn("unknown lifecycle event", slog.String("kind", string(event.Kind)))
		return nil
	}
	return s.sendEmail([]string{event.Email}, subject, text)
}

func compose(e models.LifecycleEvent) (subject, text string, ok bool) {
	name := e.FirstName
	if name == "" {
		name = e.Email
	}
	expires := e.ExpiresAt.Format("02/01/2006")

	switch e.Kind {
	case models.EventPurchased:
		return "Sua assinatura MoVibes está ativa",
			fmt.Sprintf("Olá, %s!\n\nSua assinatura %s foi ativada.\nValor pago: %s.\nVálida até %s.\n\nBoas práticas!",
				name, e.PlanName, formatAmount(e.AmountPaid), expires), true
	case models.EventRenewed:
		return "Sua assinatura MoVibes foi renovada",
			fmt.Sprintf("Olá, %s!\n\nSua assinatura %s foi renovada automaticamente.\nValor: %s.\nNova validade: %s.",
				name, e.PlanName, formatAmount(e.AmountPaid), expires), true
	case models.EventCancelled:
		text := fmt.Sprintf("Olá, %s!\n\nSua assinatura %s foi cancelada. O acesso foi encerrado e não haverá renovação.",
			name, e.PlanName)
		if e.Role == models.RoleProfessional {
			text += "\n\nSeu perfil profissional ficará indisponível até que você escolha um novo plano."
		}
		return "Assinatura MoVibes cancelada", text, true
	case models.EventExpiring:
		return "Sua assinatura MoVibes termina amanhã",
			fmt.Sprintf("Olá, %s!\n\nSua assinatura %s termina em %s.\nSe a renovação automática estiver ativa, nada muda para você.",
				name, e.PlanName, expires), true
	}
	return "", "", false
}

// formatAmount форматирует сумму в центах как R$ 1.234,56.
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
