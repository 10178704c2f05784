package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"genesis-events/models"
)

// Notifier delivers payment status updates to participants. Delivery is
// best-effort: a failed send never blocks or reverts the status transition.
type Notifier interface {
	NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error
}

// NewNotifierFromEnv selects the notifier by NOTIFY_PROVIDER: "email",
// "twilio", anything else gets the no-op.
func NewNotifierFromEnv() Notifier {
	switch os.Getenv("NOTIFY_PROVIDER") {
	case "email":
		return &emailNotifier{
			host:     os.Getenv("SMTP_HOST"),
			port:     os.Getenv("SMTP_PORT"),
			from:     os.Getenv("SMTP_FROM"),
			password: os.Getenv("SMTP_PASSWORD"),
		}
	case "twilio":
		return &twilioNotifier{
			client: twilio.NewRestClientWithParams(twilio.ClientParams{
				Username: os.Getenv("TWILIO_ACCOUNT_SID"),
				Password: os.Getenv("TWILIO_AUTH_TOKEN"),
			}),
			from: os.Getenv("TWILIO_FROM_NUMBER"),
		}
	default:
		return NoopNotifier{}
	}
}

// NoopNotifier logs and discards. The default when no provider is set.
type NoopNotifier struct{}

func (NoopNotifier) NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error {
	logrus.WithFields(logrus.Fields{
		"participant_id": p.ID,
		"event_id":       e.ID,
		"status":         status,
	}).Info("payment notification suppressed (no provider configured)")
	return nil
}

func statusMessage(p *models.Participant, e *models.Event, status models.PaymentStatus) (subject, body string) {
	switch status {
	case models.PaymentPaid:
		return "Payment confirmed — " + e.Name,
			fmt.Sprintf("Hi %s, your payment for %s is confirmed. Your ticket QR is ready.", p.FullName, e.Name)
	case models.PaymentOfflinePaid:
		return "Offline payment recorded — " + e.Name,
			fmt.Sprintf("Hi %s, your offline payment for %s has been recorded.", p.FullName, e.Name)
	case models.PaymentFailed:
		return "Payment verification failed — " + e.Name,
			fmt.Sprintf("Hi %s, we could not verify your payment for %s. Please re-upload a clear receipt or contact the desk.", p.FullName, e.Name)
	default:
		return "Payment update — " + e.Name,
			fmt.Sprintf("Hi %s, your payment status for %s is now %s.", p.FullName, e.Name, status)
	}
}

type emailNotifier struct {
	host     string
	port     string
	from     string
	password string
}

func (n *emailNotifier) NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error {
	subject, body := statusMessage(p, e, status)
	auth := smtp.PlainAuth("", n.from, n.password, n.host)
	msg := []byte("To: " + p.Email + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")
	if err := smtp.SendMail(n.host+":"+n.port, auth, n.from, []string{p.Email}, msg); err != nil {
		logrus.WithError(err).WithField("participant_id", p.ID).Error("email notification failed")
		return err
	}
	return nil
}

type twilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func (n *twilioNotifier) NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error {
	_, body := statusMessage(p, e, status)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(p.Phone)
	params.SetFrom(n.from)
	params.SetBody(body)
	if _, err := n.client.Api.CreateMessage(params); err != nil {
		logrus.WithError(err).WithField("participant_id", p.ID).Error("sms notification failed")
		return err
	}
	return nil
}
