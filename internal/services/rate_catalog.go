package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/shopspring/decimal"
)

const rateCacheTTL = 10 * time.Minute

// RateCatalog is the experience-bracket to flat-rate lookup. Pure read;
// results are cached. A missing rate is a data error: it aborts the caller
// and raises an operator alert instead of defaulting to zero.
type RateCatalog interface {
	ClientRate(ctx context.Context, clientOrgID uint, bracket string) (decimal.Decimal, error)
	InterviewerRate(ctx context.Context, bracket string) (decimal.Decimal, error)
}

type rateCatalog struct {
	rates  postgres.RateRepository
	cache  cache.Cache
	alerts queue.Enqueuer
}

func NewRateCatalog(rates postgres.RateRepository, c cache.Cache, alerts queue.Enqueuer) RateCatalog {
	return &rateCatalog{rates: rates, cache: c, alerts: alerts}
}

// BracketForExperience bands total experience into a rate-card bracket.
func BracketForExperience(years, months int) string {
	total := years*12 + months
	switch {
	case total < 4*12:
		return "0-4"
	case total < 6*12:
		return "4-6"
	case total < 8*12:
		return "6-8"
	case total < 10*12:
		return "8-10"
	default:
		return "10+"
	}
}

func (s *rateCatalog) ClientRate(ctx context.Context, clientOrgID uint, bracket string) (decimal.Decimal, error) {
	const op = "RateCatalog.ClientRate"

	key := fmt.Sprintf("rate:client:%d:%s", clientOrgID, bracket)
	var cached decimal.Decimal
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rate, err := s.rates.ClientRate(ctx, clientOrgID, bracket)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.alert(ctx, "client", bracket, clientOrgID)
			return decimal.Zero, utils.E(utils.CodeFailedPrecondition, op,
				"no client rate configured for this experience bracket", err)
		}
		return decimal.Zero, utils.E(utils.CodeInternal, op, "rate lookup failed", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, rate, rateCacheTTL)
	}
	return rate, nil
}

func (s *rateCatalog) InterviewerRate(ctx context.Context, bracket string) (decimal.Decimal, error) {
	const op = "RateCatalog.InterviewerRate"

	key := "rate:interviewer:" + bracket
	var cached decimal.Decimal
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rate, err := s.rates.InterviewerRate(ctx, bracket)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.alert(ctx, "interviewer", bracket, 0)
			return decimal.Zero, utils.E(utils.CodeFailedPrecondition, op,
				"no interviewer rate configured for this experience bracket", err)
		}
		return decimal.Zero, utils.E(utils.CodeInternal, op, "rate lookup failed", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, rate, rateCacheTTL)
	}
	return rate, nil
}

func (s *rateCatalog) alert(ctx context.Context, scope, bracket string, clientOrgID uint) {
	if s.alerts == nil {
		return
	}
	_ = s.alerts.Enqueue(ctx, queue.StreamOpsAlerts, queue.Message{
		Kind:    queue.KindOpsAlert,
		Subject: "missing rate card",
		Data: map[string]any{
			"scope":         scope,
			"bracket":       bracket,
			"client_org_id": clientOrgID,
		},
	})
}
