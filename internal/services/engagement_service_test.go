package services

import (
	"context"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

func newEngagementFixture() (*memState, EngagementService) {
	m := newMemState()
	// 21-day notice period: 3 campaign weeks, 6 deliveries max.
	m.engagements[1] = &models.Engagement{
		ID:               1,
		ClientOrgID:      10,
		CandidateName:    "Asha Verma",
		CandidateEmail:   "asha@example.com",
		NoticePeriodDays: 21,
	}
	m.templates[2] = &models.EngagementTemplate{ID: 2, ClientOrgID: 10, Name: "welcome", Subject: "Hello", Body: "Hi there"}
	m.nextID = 100

	return m, NewEngagementService(newTestTx(m), testLogger())
}

func futureOp(week int, offset time.Duration) OperationInput {
	return OperationInput{TemplateID: 2, Week: week, DeliverAt: time.Now().Add(24*time.Hour + offset)}
}

func TestScheduleOperations_IssuesTaskHandles(t *testing.T) {
	_, svc := newEngagementFixture()

	ops, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{
		futureOp(1, 0),
		futureOp(2, time.Hour),
	})
	if err != nil {
		t.Fatalf("ScheduleOperations: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}
	if ops[0].TaskID == "" || ops[0].TaskID == ops[1].TaskID {
		t.Error("each operation needs a distinct task handle")
	}
	for _, op := range ops {
		if op.DeliveryStatus != models.DeliveryPending {
			t.Errorf("operation %d status = %q, want PND", op.ID, op.DeliveryStatus)
		}
		if !op.NextRunAt.Equal(op.DeliverAt) {
			t.Errorf("operation %d next run must equal deliver time", op.ID)
		}
	}
}

func TestScheduleOperations_WeeklyQuota(t *testing.T) {
	_, svc := newEngagementFixture()

	if _, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{
		futureOp(1, 0),
		futureOp(1, time.Hour),
	}); err != nil {
		t.Fatalf("filling week 1: %v", err)
	}

	_, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(1, 2 * time.Hour)})
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for third delivery in week 1, got %v", err)
	}
}

func TestScheduleOperations_CampaignQuota(t *testing.T) {
	_, svc := newEngagementFixture()

	// 6 deliveries fill the 21-day campaign.
	var batch []OperationInput
	for week := 1; week <= 3; week++ {
		batch = append(batch, futureOp(week, 0), futureOp(week, time.Hour))
	}
	if _, err := svc.ScheduleOperations(context.Background(), 1, batch); err != nil {
		t.Fatalf("filling campaign: %v", err)
	}

	_, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(2, 3 * time.Hour)})
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT past campaign quota, got %v", err)
	}
}

func TestScheduleOperations_WeekOutsideNotice(t *testing.T) {
	_, svc := newEngagementFixture()

	_, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(4, 0)})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for week past notice period, got %v", err)
	}
}

func TestScheduleOperations_ForeignTemplateRejected(t *testing.T) {
	m, svc := newEngagementFixture()
	m.templates[3] = &models.EngagementTemplate{ID: 3, ClientOrgID: 99, Name: "other"}

	_, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{
		{TemplateID: 3, Week: 1, DeliverAt: time.Now().Add(24 * time.Hour)},
	})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for another client's template, got %v", err)
	}
}

func TestReschedule_IssuesFreshHandleAndResetsAttempts(t *testing.T) {
	m, svc := newEngagementFixture()

	ops, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(1, 0)})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	op := ops[0]
	oldTask := op.TaskID

	// Simulate a failed delivery attempt before the reschedule.
	stored := m.operations[op.ID]
	stored.Attempts = 2
	stored.DeliveryStatus = models.DeliveryFailed

	newTime := time.Now().Add(72 * time.Hour)
	moved, err := svc.Reschedule(context.Background(), op.ID, newTime)
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if moved.TaskID == oldTask {
		t.Error("reschedule must retire the old task handle")
	}
	if moved.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 after reschedule", moved.Attempts)
	}
	if moved.DeliveryStatus != models.DeliveryPending {
		t.Errorf("status = %q, want PND after reschedule", moved.DeliveryStatus)
	}
	if !moved.NextRunAt.Equal(newTime) {
		t.Errorf("next run = %v, want %v", moved.NextRunAt, newTime)
	}
}

func TestReschedule_DeliveredIsImmutable(t *testing.T) {
	m, svc := newEngagementFixture()

	ops, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(1, 0)})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	m.operations[ops[0].ID].DeliveryStatus = models.DeliverySucceeded

	_, err = svc.Reschedule(context.Background(), ops[0].ID, time.Now().Add(48*time.Hour))
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT rescheduling a delivered operation, got %v", err)
	}
}

func TestCancelOperation_FreesQuota(t *testing.T) {
	_, svc := newEngagementFixture()

	ops, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{
		futureOp(1, 0),
		futureOp(1, time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := svc.CancelOperation(context.Background(), ops[0].ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Cancelled deliveries no longer count against the weekly quota.
	if _, err := svc.ScheduleOperations(context.Background(), 1, []OperationInput{futureOp(1, 2 * time.Hour)}); err != nil {
		t.Fatalf("schedule after cancel: %v", err)
	}
}
