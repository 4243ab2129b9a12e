// Package sender отправляет письма пользователям: коды подтверждения,
// ссылки на сброс пароля и напоминания об окончании подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/comic-platform/internal/models"
)

type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
	resetURL  string
}

// NewSenderService создает новый экземпляр SenderService. resetURL — база
// ссылки на форму сброса пароля, токен дописывается в конец.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface, resetURL string) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
		resetURL:  resetURL,
	}
}

// SendOtpEmail отправляет код подтверждения регистрации.
func (s *SenderService) SendOtpEmail(email, firstName, code string) error {
	subject := "Your verification code"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour verification code is: %s\n\nThe code expires in 10 minutes.",
		firstName, code)
	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendResetEmail отправляет ссылку для сброса пароля.
func (s *SenderService) SendResetEmail(email, firstName, token string) error {
	subject := "Password reset"
	bodyText := fmt.Sprintf("Hello, %s!\n\nTo reset your password, follow the link: %s%s\n\nThe link expires in 1 hour. If you did not request a reset, ignore this email.",
		firstName, s.resetURL, token)
	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendPaymentConfirmation отправляет подтверждение оплаты подписки.
func (s *SenderService) SendPaymentConfirmation(email, firstName, planType string, endDate time.Time) error {
	subject := "Premium subscription activated"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour payment was successful. The %s premium subscription is active until %s.\n\nEnjoy premium comics and chapters!",
		firstName, planType, endDate.Format("02.01.2006"))
	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendReminderNotification обрабатывает сообщение из очереди напоминаний.
func (s *SenderService) SendReminderNotification(body []byte) error {
	var message models.ReminderInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your premium subscription is expiring soon"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour %s premium subscription expires on %s.\n\nRenew it to keep access to premium comics and chapters.",
		message.FirstName, message.Plan, message.EndDate.Format("02.01.2006"))
	return s.sendEmail([]string{message.Email}, subject, bodyText)
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
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
