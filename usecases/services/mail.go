package services

import (
	"context"
	"errors"
	"os"

	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/entities"
	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var (
	ErrMissingAddress = errors.New("sender and recipient email are required")
	ErrMissingBody    = errors.New("at least one of text file or html file is required")
)

type IMailService interface {
	CreateMessage(req dto.EmailRequest) (*gomail.Message, error)
	SendEmail(ctx context.Context, req dto.EmailRequest) error
}

type mailService struct {
	dialer interfaces.IMailDialer
	logger logger.ILogger
}

func NewMailService(dialer interfaces.IMailDialer, logger logger.ILogger) IMailService {
	return &mailService{
		dialer: dialer,
		logger: logger,
	}
}

// CreateMessage builds one message from the body files in req. With both a
// text and an HTML file the message is multipart/alternative, plain text
// first.
func (s *mailService) CreateMessage(req dto.EmailRequest) (*gomail.Message, error) {
	if req.Sender.Address == "" || req.Recipient.Address == "" {
		return nil, ErrMissingAddress
	}
	if req.TextFile == "" && req.HTMLFile == "" {
		return nil, ErrMissingBody
	}

	message := gomail.NewMessage()
	message.SetHeader("From", formatMailbox(message, req.Sender))
	message.SetHeader("To", formatMailbox(message, req.Recipient))
	if req.Subject != "" {
		message.SetHeader("Subject", req.Subject)
	}

	if req.TextFile != "" {
		text, err := os.ReadFile(req.TextFile)
		if err != nil {
			s.logger.Error("failed to read text body", zap.String("file", req.TextFile), zap.Error(err))
			return nil, err
		}
		message.SetBody("text/plain", string(text))
	}

	if req.HTMLFile != "" {
		html, err := os.ReadFile(req.HTMLFile)
		if err != nil {
			s.logger.Error("failed to read html body", zap.String("file", req.HTMLFile), zap.Error(err))
			return nil, err
		}
		if req.TextFile != "" {
			message.AddAlternative("text/html", string(html))
		} else {
			message.SetBody("text/html", string(html))
		}
	}
	return message, nil
}

func (s *mailService) SendEmail(ctx context.Context, req dto.EmailRequest) error {
	message, err := s.CreateMessage(req)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(message); err != nil {
		s.logger.Error("failed to send email", zap.String("emailTo", req.Recipient.Address), zap.Error(err))
		return err
	}

	s.logger.Info("Email sent successfully", zap.String("emailTo", req.Recipient.Address), zap.String("subject", req.Subject))
	return nil
}

func formatMailbox(message *gomail.Message, mailbox entities.Mailbox) string {
	if mailbox.Name == "" {
		return mailbox.Address
	}
	return message.FormatAddress(mailbox.Address, mailbox.Name)
}
