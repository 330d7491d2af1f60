package workers

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/sirupsen/logrus"
)

const (
	maxDeliveryAttempts = 3
	deliveryBackoff     = 5 * time.Minute
	pollBatchSize       = 50
)

// EngagementPoller claims due engagement operations and hands them to the
// notification stream. Claiming uses SKIP LOCKED plus a short lease so
// multiple instances can poll the same table without double delivery; the
// enqueue runs between the claim and the settle transactions, never inside
// either, and the settle re-checks the task handle so a reschedule that
// raced the delivery is left alone.
type EngagementPoller struct {
	Tx       postgres.TxRunner
	Enqueuer queue.Enqueuer
	Logger   *logrus.Logger
	Interval time.Duration
}

// pendingDelivery is one claimed operation with its message resolved, ready
// to enqueue outside the claiming transaction.
type pendingDelivery struct {
	op  models.EngagementOperation
	msg queue.Message
}

func (p *EngagementPoller) Run(ctx context.Context) error {
	if p.Tx == nil || p.Enqueuer == nil {
		return errors.New("EngagementPoller missing dependency: Tx/Enqueuer must be set")
	}
	if p.Interval <= 0 {
		p.Interval = 30 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *EngagementPoller) tick(ctx context.Context) {
	var batch []pendingDelivery
	err := p.Tx.InTx(ctx, func(st *postgres.Store) error {
		due, err := st.Engagements.FetchDueOperations(ctx, time.Now(), pollBatchSize)
		if err != nil {
			return err
		}
		for i := range due {
			op := &due[i]
			log := p.opLogger(op)

			eng, tpl, err := p.load(ctx, st, op)
			if err != nil {
				log.WithError(err).Error("engagement load failed, cancelling operation")
				op.DeliveryStatus = models.DeliveryCancelled
				p.save(ctx, st, op, log)
				continue
			}

			// Lease the row past the enqueue so the next tick cannot
			// re-claim it before it settles.
			op.NextRunAt = time.Now().Add(deliveryBackoff)
			p.save(ctx, st, op, log)

			batch = append(batch, pendingDelivery{
				op: *op,
				msg: queue.Message{
					Kind:      queue.KindEngagement,
					Recipient: eng.CandidateEmail,
					Subject:   tpl.Subject,
					Data: map[string]any{
						"candidate_name": eng.CandidateName,
						"body":           tpl.Body,
						"week":           op.Week,
						"task_id":        op.TaskID,
					},
				},
			})
		}
		return nil
	})
	if err != nil {
		p.Logger.WithError(err).Error("engagement poll failed")
		return
	}

	for i := range batch {
		p.deliver(ctx, &batch[i])
	}
}

// deliver enqueues the claimed message, then settles the row in a fresh
// transaction.
func (p *EngagementPoller) deliver(ctx context.Context, d *pendingDelivery) {
	log := p.opLogger(&d.op)

	enqErr := p.Enqueuer.Enqueue(ctx, queue.StreamNotifications, d.msg)

	err := p.Tx.InTx(ctx, func(st *postgres.Store) error {
		op, err := st.Engagements.GetOperationForUpdate(ctx, d.op.ID)
		if err != nil {
			return err
		}
		// A reschedule or cancel between claim and settle invalidates the
		// handle this delivery ran under.
		if op.TaskID != d.op.TaskID || op.DeliveryStatus != models.DeliveryPending {
			log.Warn("operation changed hands mid-delivery, leaving it untouched")
			return nil
		}

		op.Attempts++
		switch {
		case enqErr == nil:
			op.DeliveryStatus = models.DeliverySucceeded
		case op.Attempts >= maxDeliveryAttempts:
			log.WithError(enqErr).Error("delivery failed permanently")
			op.DeliveryStatus = models.DeliveryFailed
		default:
			log.WithError(enqErr).Warn("delivery failed, backing off")
			op.NextRunAt = time.Now().Add(deliveryBackoff * time.Duration(op.Attempts))
		}
		return st.Engagements.SaveOperation(ctx, op)
	})
	if err != nil {
		log.WithError(err).Error("failed to settle operation")
	}
}

func (p *EngagementPoller) load(ctx context.Context, st *postgres.Store, op *models.EngagementOperation) (*models.Engagement, *models.EngagementTemplate, error) {
	eng, err := st.Engagements.GetEngagement(ctx, op.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	tpl, err := st.Engagements.GetTemplate(ctx, op.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	return eng, tpl, nil
}

func (p *EngagementPoller) save(ctx context.Context, st *postgres.Store, op *models.EngagementOperation, log *logrus.Entry) {
	if err := st.Engagements.SaveOperation(ctx, op); err != nil {
		log.WithError(err).Error("failed to persist operation state")
	}
}

func (p *EngagementPoller) opLogger(op *models.EngagementOperation) *logrus.Entry {
	return p.Logger.WithFields(logrus.Fields{
		"operation_id": op.ID,
		"task_id":      op.TaskID,
		"attempt":      op.Attempts + 1,
	})
}
