package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/ourxmas/payment-service/internal/config"
	"github.com/ourxmas/payment-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentNotification sends a notification email for a newly stored
// inbound transaction.
func (s *Sender) SendPaymentNotification(tx *models.Transaction, paymentCode string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.NotifyEmail}
	e.Subject = fmt.Sprintf("Payment received: %s", paymentCode)

	body := fmt.Sprintf(
		"A new payment has been received.\n\n"+
			"Payment code: %s\n"+
			"Gateway: %s\n"+
			"Account: %s\n"+
			"Amount: %d\n"+
			"Reference: %s\n"+
			"Transaction time: %s\n"+
			"Content: %s\n",
		paymentCode, tx.Gateway, tx.AccountNumber, tx.Amount,
		tx.ReferenceCode, tx.TransactionDate.Format("2006-01-02 15:04:05"), tx.Content,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", s.cfg.NotifyEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.NotifyEmail, e.Subject)
	return nil
}
