package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"babymind/internal/events"
)

// sesClient is the part of the SES API the email service calls
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends reminder emails via Amazon SES
type EmailService struct {
	client    sesClient
	fromEmail string
	fromName  string
	enabled   bool
	logger    *zap.Logger
}

// NewEmailService creates a new email service. It is disabled when fromEmail is empty.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, logger *zap.Logger) (*EmailService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendReminderEmail sends one reminder alert for a baby
func (s *EmailService) SendReminderEmail(ctx context.Context, toEmail, babyName string, reminder events.ReminderDue) error {
	if !s.enabled {
		s.logger.Debug("skipping reminder email (service disabled)", zap.String("title", reminder.Title))
		return nil
	}

	when := reminder.ScheduledAt.Format("Mon 2 Jan 15:04")
	subject := fmt.Sprintf("Reminder for %s: %s", babyName, reminder.Title)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>%s</h2>
	<p>Scheduled for %s</p>
	<p>%s</p>
	<p style="font-size: 12px; color: #666;">This is an automated reminder from BabyMind.</p>
</body>
</html>
`, html.EscapeString(reminder.Title), when, html.EscapeString(reminder.Notes))
	textBody := fmt.Sprintf("%s\n\nScheduled for %s\n\n%s\n\n---\nThis is an automated reminder from BabyMind.\n",
		reminder.Title, when, reminder.Notes)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}

// ReminderNotifier emails reminder.due events to a caregiver address
type ReminderNotifier struct {
	email   *EmailService
	babies  *BabyService
	to      string
	timeout time.Duration
	logger  *zap.Logger
}

// NewReminderNotifier creates a notifier sending to toEmail
func NewReminderNotifier(email *EmailService, babies *BabyService, toEmail string, logger *zap.Logger) *ReminderNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderNotifier{email: email, babies: babies, to: toEmail, timeout: 10 * time.Second, logger: logger}
}

// Run consumes the subscription until it is closed or ctx is done
func (n *ReminderNotifier) Run(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			var reminder events.ReminderDue
			if err := event.DataAs(&reminder); err != nil {
				n.logger.Warn("invalid reminder event", zap.String("id", event.ID()), zap.Error(err))
				continue
			}
			if err := n.notify(ctx, reminder); err != nil {
				n.logger.Error("failed to send reminder", zap.Stringer("entity_id", reminder.EntityID), zap.Error(err))
			}
		}
	}
}

func (n *ReminderNotifier) notify(ctx context.Context, reminder events.ReminderDue) error {
	if n.to == "" {
		return nil
	}
	name := "your baby"
	if baby, err := n.babies.Get(reminder.BabyID); err == nil {
		name = baby.Name
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.email.SendReminderEmail(ctx, n.to, name, reminder)
}
