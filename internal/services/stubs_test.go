package services

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// In-memory repository fakes so service tests exercise the real transaction
// bodies without a database.

type memTx struct {
	store *postgres.Store
}

func (m *memTx) Store() *postgres.Store { return m.store }

func (m *memTx) InTx(_ context.Context, fn func(s *postgres.Store) error) error {
	return fn(m.store)
}

type memState struct {
	slots      map[uint]*models.InterviewerAvailability
	candidates map[uint]*models.Candidate
	requests   map[uint]*models.BookingRequest
	interviews map[uint]*models.Interview
	feedback   map[uint]*models.InterviewFeedback
	billing    map[uint]*models.BillingRecord

	engagements map[uint]*models.Engagement
	templates   map[uint]*models.EngagementTemplate
	operations  map[uint]*models.EngagementOperation

	interviewers map[uint]*models.Interviewer
	contacts     map[string]*models.ClientContact

	clientRates      map[uint]map[string]decimal.Decimal
	interviewerRates map[string]decimal.Decimal

	nextID uint
}

func newMemState() *memState {
	return &memState{
		slots:            map[uint]*models.InterviewerAvailability{},
		candidates:       map[uint]*models.Candidate{},
		requests:         map[uint]*models.BookingRequest{},
		interviews:       map[uint]*models.Interview{},
		feedback:         map[uint]*models.InterviewFeedback{},
		billing:          map[uint]*models.BillingRecord{},
		engagements:      map[uint]*models.Engagement{},
		templates:        map[uint]*models.EngagementTemplate{},
		operations:       map[uint]*models.EngagementOperation{},
		interviewers:     map[uint]*models.Interviewer{},
		contacts:         map[string]*models.ClientContact{},
		clientRates:      map[uint]map[string]decimal.Decimal{},
		interviewerRates: map[string]decimal.Decimal{},
	}
}

func (m *memState) id() uint {
	m.nextID++
	return m.nextID
}

func newTestTx(m *memState) postgres.TxRunner {
	return &memTx{store: &postgres.Store{
		Availability: &memAvailability{m},
		Candidates:   &memCandidates{m},
		Requests:     &memRequests{m},
		Interviews:   &memInterviews{m},
		Feedback:     &memFeedback{m},
		Billing:      &memBilling{m},
		Rates:        &memRates{m},
		Engagements:  &memEngagements{m},
		Interviewers: &memInterviewers{m},
		Contacts:     &memContacts{m},
	}}
}

type memAvailability struct{ m *memState }

func (r *memAvailability) Create(_ context.Context, slots ...*models.InterviewerAvailability) error {
	for _, s := range slots {
		s.ID = r.m.id()
		cp := *s
		r.m.slots[s.ID] = &cp
	}
	return nil
}

func (r *memAvailability) GetByID(_ context.Context, id uint) (*models.InterviewerAvailability, error) {
	s, ok := r.m.slots[id]
	if !ok || s.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memAvailability) GetByIDForUpdate(ctx context.Context, id uint) (*models.InterviewerAvailability, error) {
	return r.GetByID(ctx, id)
}

func (r *memAvailability) HasOpenOverlap(_ context.Context, interviewerID uint, date, start, end time.Time) (bool, error) {
	for _, s := range r.m.slots {
		if s.InterviewerID != interviewerID || s.Archived || s.BookedByID != nil {
			continue
		}
		if !s.Date.Equal(date) {
			continue
		}
		if s.StartTime.Before(end) && s.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAvailability) ListForInterviewer(_ context.Context, interviewerID uint) ([]models.InterviewerAvailability, error) {
	var out []models.InterviewerAvailability
	for _, s := range r.m.slots {
		if s.InterviewerID == interviewerID && !s.Archived {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memAvailability) Save(_ context.Context, slot *models.InterviewerAvailability) error {
	cp := *slot
	r.m.slots[slot.ID] = &cp
	return nil
}

type memCandidates struct{ m *memState }

func (r *memCandidates) Create(_ context.Context, c *models.Candidate) error {
	c.ID = r.m.id()
	cp := *c
	r.m.candidates[c.ID] = &cp
	return nil
}

func (r *memCandidates) GetByID(_ context.Context, id uint) (*models.Candidate, error) {
	c, ok := r.m.candidates[id]
	if !ok || c.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCandidates) GetByIDForUpdate(ctx context.Context, id uint) (*models.Candidate, error) {
	return r.GetByID(ctx, id)
}

func (r *memCandidates) Save(_ context.Context, c *models.Candidate) error {
	cp := *c
	r.m.candidates[c.ID] = &cp
	return nil
}

func (r *memCandidates) Archive(_ context.Context, id uint, reason string) error {
	c, ok := r.m.candidates[id]
	if !ok || c.Archived {
		return utils.ErrNotFound
	}
	c.Archived = true
	c.DropReason = reason
	return nil
}

type memRequests struct{ m *memState }

func (r *memRequests) CreateBatch(_ context.Context, reqs []*models.BookingRequest) error {
	for _, req := range reqs {
		req.ID = r.m.id()
		cp := *req
		r.m.requests[req.ID] = &cp
	}
	return nil
}

func (r *memRequests) FindByTokenForUpdate(_ context.Context, token string) (*models.BookingRequest, error) {
	for _, req := range r.m.requests {
		if !req.Archived && (req.AcceptToken == token || req.RejectToken == token) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *memRequests) Save(_ context.Context, req *models.BookingRequest) error {
	cp := *req
	r.m.requests[req.ID] = &cp
	return nil
}

type memInterviews struct{ m *memState }

func (r *memInterviews) Create(_ context.Context, iv *models.Interview) error {
	for _, cur := range r.m.interviews {
		if cur.Archived || cur.InterviewerID == nil || iv.InterviewerID == nil {
			continue
		}
		if *cur.InterviewerID == *iv.InterviewerID && cur.ScheduledAt.Equal(iv.ScheduledAt) {
			return gorm.ErrDuplicatedKey
		}
	}
	iv.ID = r.m.id()
	cp := *iv
	r.m.interviews[iv.ID] = &cp
	return nil
}

func (r *memInterviews) GetByID(_ context.Context, id uint) (*models.Interview, error) {
	iv, ok := r.m.interviews[id]
	if !ok || iv.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (r *memInterviews) GetByIDForUpdate(ctx context.Context, id uint) (*models.Interview, error) {
	return r.GetByID(ctx, id)
}

func (r *memInterviews) HasScheduledWithin(_ context.Context, interviewerID uint, from, to time.Time) (bool, error) {
	for _, iv := range r.m.interviews {
		if iv.Archived || iv.Status != models.StatusScheduled {
			continue
		}
		if iv.InterviewerID == nil || *iv.InterviewerID != interviewerID {
			continue
		}
		if iv.ScheduledAt.After(from) && iv.ScheduledAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInterviews) History(_ context.Context, id uint) ([]models.Interview, error) {
	var chain []models.Interview
	cur := id
	for {
		iv, ok := r.m.interviews[cur]
		if !ok {
			if len(chain) > 0 {
				return chain, nil
			}
			return nil, utils.ErrNotFound
		}
		chain = append(chain, *iv)
		if iv.PreviousInterviewID == nil {
			return chain, nil
		}
		cur = *iv.PreviousInterviewID
	}
}

func (r *memInterviews) Save(_ context.Context, iv *models.Interview) error {
	cp := *iv
	r.m.interviews[iv.ID] = &cp
	return nil
}

type memFeedback struct{ m *memState }

func (r *memFeedback) GetByInterviewID(_ context.Context, interviewID uint) (*models.InterviewFeedback, error) {
	for _, fb := range r.m.feedback {
		if fb.InterviewID == interviewID && !fb.Archived {
			cp := *fb
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *memFeedback) Save(_ context.Context, fb *models.InterviewFeedback) error {
	if fb.ID == 0 {
		fb.ID = r.m.id()
	}
	cp := *fb
	r.m.feedback[fb.ID] = &cp
	return nil
}

type memBilling struct{ m *memState }

func (r *memBilling) FindPendingBucketForUpdate(_ context.Context, recordType string, ownerID uint, month time.Time) (*models.BillingRecord, error) {
	for _, rec := range r.m.billing {
		if rec.Archived || rec.RecordType != recordType || rec.Status != models.BillingPending {
			continue
		}
		if !rec.BillingMonth.Equal(month) {
			continue
		}
		switch recordType {
		case models.RecordClientBilling:
			if rec.ClientOrgID != nil && *rec.ClientOrgID == ownerID {
				cp := *rec
				return &cp, nil
			}
		case models.RecordInterviewerPayment:
			if rec.InterviewerID != nil && *rec.InterviewerID == ownerID {
				cp := *rec
				return &cp, nil
			}
		}
	}
	return nil, utils.ErrNotFound
}

func (r *memBilling) Create(_ context.Context, rec *models.BillingRecord) error {
	rec.ID = r.m.id()
	cp := *rec
	r.m.billing[rec.ID] = &cp
	return nil
}

func (r *memBilling) Save(_ context.Context, rec *models.BillingRecord) error {
	cp := *rec
	r.m.billing[rec.ID] = &cp
	return nil
}

func (r *memBilling) List(_ context.Context, recordType string, month time.Time) ([]models.BillingRecord, error) {
	var out []models.BillingRecord
	for _, rec := range r.m.billing {
		if rec.Archived {
			continue
		}
		if recordType != "" && rec.RecordType != recordType {
			continue
		}
		if !month.IsZero() && !rec.BillingMonth.Equal(month) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

type memRates struct{ m *memState }

func (r *memRates) ClientRate(_ context.Context, clientOrgID uint, bracket string) (decimal.Decimal, error) {
	if rates, ok := r.m.clientRates[clientOrgID]; ok {
		if rate, ok := rates[bracket]; ok {
			return rate, nil
		}
	}
	return decimal.Zero, utils.ErrNotFound
}

func (r *memRates) InterviewerRate(_ context.Context, bracket string) (decimal.Decimal, error) {
	if rate, ok := r.m.interviewerRates[bracket]; ok {
		return rate, nil
	}
	return decimal.Zero, utils.ErrNotFound
}

type memEngagements struct{ m *memState }

func (r *memEngagements) CreateEngagement(_ context.Context, eng *models.Engagement) error {
	eng.ID = r.m.id()
	cp := *eng
	r.m.engagements[eng.ID] = &cp
	return nil
}

func (r *memEngagements) GetEngagement(_ context.Context, id uint) (*models.Engagement, error) {
	eng, ok := r.m.engagements[id]
	if !ok || eng.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *eng
	return &cp, nil
}

func (r *memEngagements) TemplateExists(_ context.Context, clientOrgID, templateID uint) (bool, error) {
	tpl, ok := r.m.templates[templateID]
	return ok && !tpl.Archived && tpl.ClientOrgID == clientOrgID, nil
}

func (r *memEngagements) GetTemplate(_ context.Context, id uint) (*models.EngagementTemplate, error) {
	tpl, ok := r.m.templates[id]
	if !ok || tpl.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (r *memEngagements) ListOperations(_ context.Context, engagementID uint) ([]models.EngagementOperation, error) {
	var out []models.EngagementOperation
	for _, op := range r.m.operations {
		if op.EngagementID == engagementID && !op.Archived && op.DeliveryStatus != models.DeliveryCancelled {
			out = append(out, *op)
		}
	}
	return out, nil
}

func (r *memEngagements) GetOperationForUpdate(_ context.Context, id uint) (*models.EngagementOperation, error) {
	op, ok := r.m.operations[id]
	if !ok || op.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *op
	return &cp, nil
}

func (r *memEngagements) CreateOperations(_ context.Context, ops []*models.EngagementOperation) error {
	for _, op := range ops {
		op.ID = r.m.id()
		cp := *op
		r.m.operations[op.ID] = &cp
	}
	return nil
}

func (r *memEngagements) SaveOperation(_ context.Context, op *models.EngagementOperation) error {
	cp := *op
	r.m.operations[op.ID] = &cp
	return nil
}

func (r *memEngagements) FetchDueOperations(_ context.Context, now time.Time, limit int) ([]models.EngagementOperation, error) {
	var out []models.EngagementOperation
	for _, op := range r.m.operations {
		if op.Archived || op.DeliveryStatus != models.DeliveryPending {
			continue
		}
		if op.NextRunAt.After(now) {
			continue
		}
		out = append(out, *op)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memInterviewers struct{ m *memState }

func (r *memInterviewers) GetByID(_ context.Context, id uint) (*models.Interviewer, error) {
	iv, ok := r.m.interviewers[id]
	if !ok || iv.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (r *memInterviewers) GetByUserID(_ context.Context, userID string) (*models.Interviewer, error) {
	for _, iv := range r.m.interviewers {
		if iv.UserID == userID && !iv.Archived {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

type memContacts struct{ m *memState }

func (r *memContacts) GetByUserID(_ context.Context, userID string) (*models.ClientContact, error) {
	ct, ok := r.m.contacts[userID]
	if !ok || ct.Archived {
		return nil, utils.ErrNotFound
	}
	cp := *ct
	return &cp, nil
}

type capturedMessage struct {
	Stream  string
	Message queue.Message
}

type memEnqueuer struct {
	messages []capturedMessage
	fail     bool
}

func (e *memEnqueuer) Enqueue(_ context.Context, stream string, m queue.Message) error {
	if e.fail {
		return context.DeadlineExceeded
	}
	e.messages = append(e.messages, capturedMessage{Stream: stream, Message: m})
	return nil
}

type stubCalendar struct {
	ref  string
	errs bool
}

func (c *stubCalendar) CreateEvent(context.Context, string, time.Time, time.Time, []string) (string, error) {
	if c.errs {
		return "", context.DeadlineExceeded
	}
	if c.ref == "" {
		return "evt-1", nil
	}
	return c.ref, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
