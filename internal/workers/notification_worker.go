package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/notify"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sendAttempts = 3
	sendBackoff  = 2 * time.Second
)

// NotificationWorkerPool drains the notification stream: renders each
// message, delivers it with bounded retries, and appends the outcome to the
// Mongo delivery log. billing_retry messages re-run billing completion
// instead of sending mail.
type NotificationWorkerPool struct {
	Redis      *redis.Client
	Notifier   notify.Provider
	Billing    services.BillingService
	LogRepo    mongorepo.NotificationLogRepository
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *NotificationWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Notifier == nil || p.LogRepo == nil {
		return errors.New("NotificationWorkerPool missing dependency: Redis/Notifier/LogRepo must be set")
	}
	if p.Stream == "" {
		p.Stream = queue.StreamNotifications
	}
	if p.Group == "" {
		p.Group = "notify-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "n"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *NotificationWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *NotificationWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	kind := getStr("kind")
	if kind == "" {
		return
	}

	var data map[string]any
	if raw := getStr("data"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &data)
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id": msg.ID,
		"kind":     kind,
	})

	if kind == queue.KindBillingRetry {
		p.retryBilling(ctx, log, data)
		return
	}

	recipient := getStr("recipient")
	subject := getStr("subject")
	if recipient == "" {
		log.Warn("dropping notification without recipient")
		return
	}

	body := renderBody(kind, data)

	var (
		attempts int
		sendErr  error
	)
	for attempts = 1; attempts <= sendAttempts; attempts++ {
		sendErr = p.Notifier.Send(ctx, recipient, subject, body)
		if sendErr == nil {
			break
		}
		log.WithError(sendErr).WithField("attempt", attempts).Warn("send failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(sendBackoff * time.Duration(attempts)):
		}
	}

	entry := &models.NotificationLog{
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Status:    "sent",
		Attempts:  attempts,
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Attempts = sendAttempts
		entry.Error = sendErr.Error()
	}
	if err := p.LogRepo.Append(ctx, entry); err != nil {
		log.WithError(err).Warn("failed to append delivery log")
	}
}

func (p *NotificationWorkerPool) retryBilling(ctx context.Context, log *logrus.Entry, data map[string]any) {
	if p.Billing == nil {
		log.Warn("billing retry received but no billing service wired")
		return
	}
	raw, ok := data["interview_id"].(float64)
	if !ok {
		log.Warn("billing retry without interview_id")
		return
	}
	if err := p.Billing.Complete(ctx, uint(raw)); err != nil {
		log.WithError(err).WithField("interview_id", uint(raw)).Error("billing retry failed")
	}
}

// renderBody flattens the template data into a plain-text mail. Real
// templating is a frontend concern; operational mails stay plain.
func renderBody(kind string, data map[string]any) string {
	switch kind {
	case queue.KindBookingRequest:
		return fmt.Sprintf(
			"Hi %v,\n\nAn interview has been proposed for %v.\n\nAccept: %v\nDecline: %v\n\nThis link expires at %v.\n",
			data["interviewer_name"], data["proposed_start"],
			data["accept_link"], data["reject_link"], data["expires_at"])
	case queue.KindInterviewConfirmed:
		b, _ := json.MarshalIndent(data, "", "  ")
		return "Your interview details:\n\n" + string(b) + "\n"
	case queue.KindEngagement:
		if body, ok := data["body"].(string); ok {
			return body
		}
	}
	b, _ := json.Marshal(data)
	return string(b)
}
