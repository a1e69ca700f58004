package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegoal/internal/apperr"
	"tradegoal/internal/config"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

type SessionService struct {
	Repo   repository.Repository
	Caps   *CapabilityService
	Rules  config.TradingConfig
	Logger *zap.Logger
}

// ensureTradingDay returns today's day row, creating it on first use and
// auto-clearing an expired block. A still-blocked day is a hard stop.
func (s *SessionService) ensureTradingDay(ctx context.Context, account *models.Account, now time.Time) (*models.TradingDay, error) {
	today := dateOnly(now)
	day, err := s.Repo.GetTradingDay(ctx, account.ID, today)
	if err != nil {
		return nil, err
	}
	if day == nil {
		day = &models.TradingDay{
			AccountID:    account.ID,
			Date:         today,
			StartCapital: account.Capital,
			Status:       models.TradingDayStatusActive,
		}
		if err := s.Repo.CreateTradingDay(ctx, day); err != nil {
			return nil, err
		}
		return day, nil
	}
	if day.Status == models.TradingDayStatusBlocked {
		if day.BlockedUntil != nil && now.After(*day.BlockedUntil) {
			day.Status = models.TradingDayStatusActive
			day.BlockedUntil = nil
			day.LossCount = 0
			day.Drawdown = decimal.Zero
			if err := s.Repo.SaveTradingDay(ctx, day); err != nil {
				return nil, err
			}
		} else {
			return nil, apperr.Authorization("trading day is blocked until cool-down elapses")
		}
	}
	return day, nil
}

// StartSession opens the next session of today's trading day, respecting
// the subscription plan's daily session cap.
func (s *SessionService) StartSession(ctx context.Context, userID uint64, email string) (*models.TradingSession, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}
	now := time.Now().UTC()
	day, err := s.ensureTradingDay(ctx, account, now)
	if err != nil {
		return nil, err
	}

	count, err := s.Repo.CountSessionsByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}
	limit := s.Rules.MaxSessionsPerDay
	if s.Caps != nil {
		caps := s.Caps.Resolve(ctx, userID, email)
		if caps.MaxDailySessions < limit {
			limit = caps.MaxDailySessions
		}
	}
	if limit > 0 && int(count) >= limit {
		return nil, apperr.Authorization("daily session limit reached")
	}

	session := &models.TradingSession{
		TradingDayID:  day.ID,
		SessionNumber: int(count) + 1,
		Status:        models.TradingSessionStatusActive,
	}
	if err := s.Repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListToday returns today's sessions, if a trading day exists yet.
func (s *SessionService) ListToday(ctx context.Context, userID uint64) ([]models.TradingSession, *models.TradingDay, error) {
	if s == nil || s.Repo == nil {
		return nil, nil, nil
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, apperr.NotFound("account not found")
	}
	day, err := s.Repo.GetTradingDay(ctx, account.ID, dateOnly(time.Now().UTC()))
	if err != nil {
		return nil, nil, err
	}
	if day == nil {
		return []models.TradingSession{}, nil, nil
	}
	sessions, err := s.Repo.ListSessionsByDay(ctx, day.ID)
	if err != nil {
		return nil, nil, err
	}
	return sessions, day, nil
}

// CloseSession marks a session closed. Operations may no longer be
// recorded against it.
func (s *SessionService) CloseSession(ctx context.Context, userID, sessionID uint64) (*models.TradingSession, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	session, _, _, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session.Status = models.TradingSessionStatusClosed
	session.EndedAt = &now
	if err := s.Repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ownedSession walks session -> day -> account and verifies ownership.
func (s *SessionService) ownedSession(ctx context.Context, userID, sessionID uint64) (*models.TradingSession, *models.TradingDay, *models.Account, error) {
	session, err := s.Repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if session == nil {
		return nil, nil, nil, apperr.NotFound("session not found")
	}
	day, err := s.Repo.GetTradingDayByID(ctx, session.TradingDayID)
	if err != nil {
		return nil, nil, nil, err
	}
	if day == nil {
		return nil, nil, nil, apperr.NotFound("trading day not found")
	}
	account, err := s.Repo.GetAccountByID(ctx, day.AccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	if account == nil {
		return nil, nil, nil, apperr.NotFound("account not found")
	}
	if account.UserID != userID {
		return nil, nil, nil, apperr.Authorization("session belongs to another account")
	}
	return session, day, account, nil
}
