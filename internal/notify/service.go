package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/metrics"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	maxTries = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues notification emails on redis and drains the queue from a
// background worker. Enqueueing is the only thing request handlers wait on;
// SMTP delivery, retries and the failed queue live in the worker.
type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", to, err)
		return err
	}

	logger.Infof("Notification queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	logger.Infof("Notification sent to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func slotLine(courtName string, date, start, end time.Time) string {
	return fmt.Sprintf("%s on %s from %s to %s",
		courtName, date.Format("Mon, Jan 2 2006"),
		timeslot.FormatClock(start), timeslot.FormatClock(end))
}

func (s *Service) BookingConfirmation(ctx context.Context, email, name, courtName string, date, start, end time.Time, total decimal.Decimal) error {
	subject := "Booking Confirmed - " + courtName
	body := fmt.Sprintf(`Hi %s,

Your court is booked!

Court: %s
Total: %s

See you on the court!

- CourtBook Team`, name, slotLine(courtName, date, start, end), total.StringFixed(2))

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) BookingCancellation(ctx context.Context, email, name, courtName string, date, start, end time.Time, refund decimal.Decimal) error {
	subject := "Booking Cancelled - " + courtName
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Court: %s
Refund: %s

- CourtBook Team`, name, slotLine(courtName, date, start, end), refund.StringFixed(2))

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) BookingReminder(ctx context.Context, email, name, courtName string, date, start, end time.Time) error {
	subject := "Reminder: your court starts soon"
	body := fmt.Sprintf(`Hi %s,

This is a reminder about your upcoming booking:

Court: %s

See you soon!

- CourtBook Team`, name, slotLine(courtName, date, start, end))

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SlotAvailable(ctx context.Context, email, name, courtName string, date, start, end time.Time, minutesToRespond int) error {
	subject := "A court slot just opened up!"
	body := fmt.Sprintf(`Hi %s,

A slot you were waiting for is now available:

Court: %s

You have %d minutes to book it before we offer it to the next person in line.

- CourtBook Team`, name, slotLine(courtName, date, start, end), minutesToRespond)

	return s.Send(ctx, email, name, subject, body)
}
