package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"eshop/internal/config"
	"eshop/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTP sends receipts through an authenticated STARTTLS relay.
type SMTP struct {
	client   mailClient
	from     string
	fromName string
	logger   *log.Logger
}

func NewSMTP(cfg config.SMTPConfig, logger *log.Logger) (*SMTP, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &SMTP{client: client, from: cfg.FromEmail, fromName: cfg.FromName, logger: logger}, nil
}

func (s *SMTP) SendOrderConfirmation(ctx context.Context, order domain.Order) error {
	msg, err := s.buildMessage(order)
	if err != nil {
		return &SendError{OrderID: order.ID, Err: err}
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return &SendError{OrderID: order.ID, Err: err}
	}
	s.logger.Printf("notify: confirmation sent order_id=%s to=%s", order.ID, order.CustomerEmail)
	return nil
}

func (s *SMTP) buildMessage(order domain.Order) (*mail.Msg, error) {
	body, err := RenderReceipt(order)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(order.CustomerEmail); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(Subject(order))
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
