package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository bound to one *gorm.DB handle (the root
// connection or a transaction).
type Store struct {
	Availability AvailabilityRepository
	Candidates   CandidateRepository
	Requests     BookingRequestRepository
	Interviews   InterviewRepository
	Feedback     FeedbackRepository
	Billing      BillingRepository
	Rates        RateRepository
	Engagements  EngagementRepository
	Interviewers InterviewerRepository
	Contacts     ContactRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Availability: NewAvailabilityRepo(db),
		Candidates:   NewCandidateRepo(db),
		Requests:     NewBookingRequestRepo(db),
		Interviews:   NewInterviewRepo(db),
		Feedback:     NewFeedbackRepo(db),
		Billing:      NewBillingRepo(db),
		Rates:        NewRateRepo(db),
		Engagements:  NewEngagementRepo(db),
		Interviewers: NewInterviewerRepo(db),
		Contacts:     NewContactRepo(db),
	}
}

// TxRunner hands services a Store for plain reads and a transactional Store
// for multi-row invariants (row locks only hold inside InTx).
type TxRunner interface {
	Store() *Store
	InTx(ctx context.Context, fn func(s *Store) error) error
}

type gormTxRunner struct {
	db    *gorm.DB
	store *Store
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db, store: NewStore(db)}
}

func (r *gormTxRunner) Store() *Store { return r.store }

func (r *gormTxRunner) InTx(ctx context.Context, fn func(s *Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
