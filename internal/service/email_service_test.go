package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babymind/internal/events"
)

type fakeSES struct {
	mu     sync.Mutex
	inputs []*sesv2.SendEmailInput
	err    error
	sent   chan struct{}
}

func newFakeSES() *fakeSES {
	return &fakeSES{sent: make(chan struct{}, 8)}
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, params)
	f.mu.Unlock()
	f.sent <- struct{}{}
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func enabledEmail(client sesClient) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: "alerts@example.com",
		fromName:  "BabyMind",
		enabled:   true,
		logger:    zap.NewNop(),
	}
}

func TestSendReminderEmail(t *testing.T) {
	ses := newFakeSES()
	svc := enabledEmail(ses)

	reminder := events.ReminderDue{Title: "Vitamin D <drops>", Notes: "One drop", ScheduledAt: now}
	require.NoError(t, svc.SendReminderEmail(context.Background(), "parent@example.com", "Mia", reminder))

	require.Len(t, ses.inputs, 1)
	input := ses.inputs[0]
	assert.Equal(t, "BabyMind <alerts@example.com>", aws.ToString(input.FromEmailAddress))
	assert.Equal(t, []string{"parent@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "Reminder for Mia: Vitamin D <drops>", aws.ToString(input.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(input.Content.Simple.Body.Html.Data), "Vitamin D &lt;drops&gt;")
	assert.Contains(t, aws.ToString(input.Content.Simple.Body.Text.Data), "One drop")
}

func TestSendReminderEmailError(t *testing.T) {
	ses := newFakeSES()
	ses.err = errors.New("throttled")
	svc := enabledEmail(ses)

	err := svc.SendReminderEmail(context.Background(), "parent@example.com", "Mia", events.ReminderDue{Title: "Feed"})
	assert.ErrorContains(t, err, "throttled")
}

func TestDisabledEmailServiceSkips(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", nil)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendReminderEmail(context.Background(), "parent@example.com", "Mia", events.ReminderDue{}))
}

func TestReminderNotifierRun(t *testing.T) {
	f := newFixture(t)
	baby := f.addBaby(t, "Mia", now.AddDate(0, -3, 0))
	ses := newFakeSES()
	notifier := NewReminderNotifier(enabledEmail(ses), f.babies, "parent@example.com", nil)

	sub := f.bus.Subscribe(events.TopicReminderDue)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		notifier.Run(ctx, sub)
		close(done)
	}()

	require.NoError(t, f.bus.Publish(events.TopicReminderDue, baby.ID.String(), events.ReminderDue{
		BabyID: baby.ID,
		Title:  "Bath",
	}))

	select {
	case <-ses.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder email was not sent")
	}
	cancel()
	<-done
	sub.Close()

	ses.mu.Lock()
	defer ses.mu.Unlock()
	assert.Equal(t, "Reminder for Mia: Bath", aws.ToString(ses.inputs[0].Content.Simple.Subject.Data))
}
