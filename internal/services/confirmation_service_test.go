package services

import (
	"context"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/shopspring/decimal"
)

type confirmFixture struct {
	m    *memState
	svc  ConfirmationService
	enq  *memEnqueuer
	cand *models.Candidate
	slot *models.InterviewerAvailability
	req  *models.BookingRequest
}

func newConfirmFixture(t *testing.T) *confirmFixture {
	t.Helper()

	m := newMemState()
	cand := &models.Candidate{
		ID:               1,
		ClientOrgID:      10,
		Name:             "Asha Verma",
		Email:            "asha@example.com",
		Status:           models.StatusNotScheduled,
		ExperienceYears:  5,
		ExperienceMonths: 0,
	}
	m.candidates[cand.ID] = cand

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	slot := &models.InterviewerAvailability{
		ID:            2,
		InterviewerID: 7,
		Date:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:     start,
		EndTime:       start.Add(3 * time.Hour),
	}
	m.slots[slot.ID] = slot

	req := &models.BookingRequest{
		ID:            3,
		CandidateID:   cand.ID,
		SlotID:        slot.ID,
		InterviewerID: slot.InterviewerID,
		RequestedBy:   "contact-user",
		ProposedStart: start.Add(time.Hour),
		AcceptToken:   "tok-accept",
		RejectToken:   "tok-reject",
		Status:        models.RequestPending,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	m.requests[req.ID] = req

	m.interviewers[7] = &models.Interviewer{ID: 7, Name: "Ravi", Email: "ravi@example.com"}
	m.contacts["contact-user"] = &models.ClientContact{ID: 4, UserID: "contact-user", Email: "ops@client.example"}

	m.clientRates[10] = map[string]decimal.Decimal{"4-6": decimal.NewFromInt(5000)}
	m.interviewerRates["4-6"] = decimal.NewFromInt(3000)
	m.nextID = 100

	tx := newTestTx(m)
	enq := &memEnqueuer{}
	rates := NewRateCatalog(tx.Store().Rates, nil, enq)
	svc := NewConfirmationService(tx, rates, enq, &stubCalendar{}, testLogger())

	return &confirmFixture{m: m, svc: svc, enq: enq, cand: cand, slot: slot, req: req}
}

func TestConfirm_AcceptBooksInterview(t *testing.T) {
	f := newConfirmFixture(t)

	res, err := f.svc.Confirm(context.Background(), "tok-accept")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !res.Accepted || res.Interview == nil {
		t.Fatal("expected an accepted result carrying the interview")
	}

	iv := f.m.interviews[res.Interview.ID]
	if iv == nil {
		t.Fatal("interview not persisted")
	}
	if iv.Status != models.StatusScheduled {
		t.Errorf("interview status = %q, want SCH", iv.Status)
	}
	if !iv.ClientAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("client amount = %s, want 5000", iv.ClientAmount)
	}
	if !iv.InterviewerAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("interviewer amount = %s, want 3000", iv.InterviewerAmount)
	}

	if got := f.m.candidates[f.cand.ID].Status; got != models.StatusScheduled {
		t.Errorf("candidate status = %q, want SCH", got)
	}
	if got := f.m.requests[f.req.ID].Status; got != models.RequestAccepted {
		t.Errorf("request status = %q, want ACC", got)
	}

	slot := f.m.slots[f.slot.ID]
	if slot.BookedByID == nil || *slot.BookedByID != f.cand.ID || !slot.IsScheduled {
		t.Error("slot must be marked booked by the candidate")
	}

	// 14:00-17:00 booked 15:00-16:00 leaves two one-hour siblings.
	var siblings int
	for id, s := range f.m.slots {
		if id == f.slot.ID {
			continue
		}
		if s.InterviewerID == f.slot.InterviewerID && s.BookedByID == nil {
			siblings++
		}
	}
	if siblings != 2 {
		t.Errorf("expected 2 open remainder slots, got %d", siblings)
	}

	// Interviewer, candidate, and the requesting contact are notified.
	if len(f.enq.messages) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(f.enq.messages))
	}
}

func TestConfirm_RejectIsTerminalNoOp(t *testing.T) {
	f := newConfirmFixture(t)

	res, err := f.svc.Confirm(context.Background(), "tok-reject")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.Accepted {
		t.Fatal("reject must not report acceptance")
	}
	if got := f.m.requests[f.req.ID].Status; got != models.RequestRejected {
		t.Errorf("request status = %q, want REJ", got)
	}
	if got := f.m.candidates[f.cand.ID].Status; got != models.StatusNotScheduled {
		t.Errorf("candidate status = %q, reject must leave candidate untouched", got)
	}
	if len(f.m.interviews) != 0 {
		t.Error("reject must not create an interview")
	}
}

func TestConfirm_UnknownTokenFailsClosed(t *testing.T) {
	f := newConfirmFixture(t)

	_, err := f.svc.Confirm(context.Background(), "tok-bogus")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for unknown token, got %v", err)
	}
}

func TestConfirm_ReplayedTokenConflicts(t *testing.T) {
	f := newConfirmFixture(t)

	if _, err := f.svc.Confirm(context.Background(), "tok-accept"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	_, err := f.svc.Confirm(context.Background(), "tok-accept")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT on replay, got %v", err)
	}
	// The paired reject token observes the same settled state.
	_, err = f.svc.Confirm(context.Background(), "tok-reject")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for reject after accept, got %v", err)
	}
}

func TestConfirm_ExpiredLinkMarksRequest(t *testing.T) {
	f := newConfirmFixture(t)
	f.req.ExpiresAt = time.Now().Add(-time.Minute)
	f.m.requests[f.req.ID] = f.req

	_, err := f.svc.Confirm(context.Background(), "tok-accept")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for expired link, got %v", err)
	}
	if got := f.m.requests[f.req.ID].Status; got != models.RequestExpired {
		t.Errorf("request status = %q, want EXP", got)
	}
}

func TestConfirm_SecondAcceptForCandidateLoses(t *testing.T) {
	f := newConfirmFixture(t)

	// A sibling request to another interviewer for the same candidate.
	other := &models.InterviewerAvailability{
		ID:            20,
		InterviewerID: 8,
		Date:          f.slot.Date,
		StartTime:     f.slot.StartTime,
		EndTime:       f.slot.EndTime,
	}
	f.m.slots[other.ID] = other
	f.m.interviewers[8] = &models.Interviewer{ID: 8, Name: "Meera", Email: "meera@example.com"}
	f.m.requests[21] = &models.BookingRequest{
		ID:            21,
		CandidateID:   f.cand.ID,
		SlotID:        other.ID,
		InterviewerID: 8,
		RequestedBy:   "contact-user",
		ProposedStart: f.req.ProposedStart,
		AcceptToken:   "tok-accept-2",
		RejectToken:   "tok-reject-2",
		Status:        models.RequestPending,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	if _, err := f.svc.Confirm(context.Background(), "tok-accept"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	_, err := f.svc.Confirm(context.Background(), "tok-accept-2")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for losing accept, got %v", err)
	}
	if len(f.m.interviews) != 1 {
		t.Fatalf("exactly one interview must exist, got %d", len(f.m.interviews))
	}
}

func TestConfirm_InterviewerBusyWithinHour(t *testing.T) {
	f := newConfirmFixture(t)

	interviewerID := f.slot.InterviewerID
	f.m.interviews[50] = &models.Interview{
		ID:            50,
		CandidateID:   99,
		InterviewerID: &interviewerID,
		Status:        models.StatusScheduled,
		ScheduledAt:   f.req.ProposedStart.Add(30 * time.Minute),
	}

	_, err := f.svc.Confirm(context.Background(), "tok-accept")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for busy interviewer, got %v", err)
	}
}

func TestConfirm_ExactlyOneHourApartAllowed(t *testing.T) {
	f := newConfirmFixture(t)

	interviewerID := f.slot.InterviewerID
	f.m.interviews[50] = &models.Interview{
		ID:            50,
		CandidateID:   99,
		InterviewerID: &interviewerID,
		Status:        models.StatusScheduled,
		ScheduledAt:   f.req.ProposedStart.Add(-time.Hour),
	}

	// The exclusion window is an open interval, so an interview exactly an
	// hour earlier does not block.
	if _, err := f.svc.Confirm(context.Background(), "tok-accept"); err != nil {
		t.Fatalf("confirm with interview exactly 1h apart: %v", err)
	}
}

func TestConfirm_MissingRateAborts(t *testing.T) {
	f := newConfirmFixture(t)
	delete(f.m.clientRates, 10)

	_, err := f.svc.Confirm(context.Background(), "tok-accept")
	if !utils.IsCode(err, utils.CodeFailedPrecondition) {
		t.Fatalf("expected FAILED_PRECONDITION for missing rate, got %v", err)
	}
	if got := f.m.requests[f.req.ID].Status; got != models.RequestPending {
		t.Errorf("request status = %q, failed accept must leave it pending", got)
	}
	if len(f.m.interviews) != 0 {
		t.Error("failed accept must not create an interview")
	}
}

func TestConfirm_DuplicateScheduleHitsUniqueIndex(t *testing.T) {
	f := newConfirmFixture(t)

	// A finished interview at the same instant does not trip the exclusion
	// window, so the unique (interviewer, scheduled_at) index is the backstop.
	interviewerID := f.slot.InterviewerID
	f.m.interviews[50] = &models.Interview{
		ID:            50,
		CandidateID:   99,
		InterviewerID: &interviewerID,
		Status:        models.StatusHighlyRecommended,
		ScheduledAt:   f.req.ProposedStart,
	}

	_, err := f.svc.Confirm(context.Background(), "tok-accept")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT from the uniqueness backstop, got %v", err)
	}
	for id, iv := range f.m.interviews {
		if id != 50 && iv.CandidateID == f.cand.ID {
			t.Fatal("no interview should have been created")
		}
	}
}

func TestConfirm_RejectForVanishedCandidateFailsClosed(t *testing.T) {
	f := newConfirmFixture(t)
	delete(f.m.candidates, f.cand.ID)

	_, err := f.svc.Confirm(context.Background(), "tok-reject")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for vanished candidate, got %v", err)
	}
	if f.m.requests[f.req.ID].Status != models.RequestPending {
		t.Fatal("request must stay pending when the link fails closed")
	}
}

func TestConfirm_RejectForVanishedSlotFailsClosed(t *testing.T) {
	f := newConfirmFixture(t)
	delete(f.m.slots, f.slot.ID)

	_, err := f.svc.Confirm(context.Background(), "tok-reject")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for vanished slot, got %v", err)
	}
	if f.m.requests[f.req.ID].Status != models.RequestPending {
		t.Fatal("request must stay pending when the link fails closed")
	}
}
