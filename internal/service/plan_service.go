package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradegoal/internal/apperr"
	"tradegoal/internal/config"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

// PlanFeatures is the JSON payload stored per tier. The 999 values on PRO
// are the product's "effectively unlimited" convention.
type PlanFeatures struct {
	MaxDailySessions  int  `json:"max_daily_sessions"`
	MaxOpsPerSession  int  `json:"max_ops_per_session"`
	MaxActiveGoals    int  `json:"max_active_goals"`
	HistoryDays       int  `json:"history_days"`
	CanSeeProjections bool `json:"can_see_projections"`
	CanExportReports  bool `json:"can_export_reports"`
}

type seedPlan struct {
	Name        string
	DisplayName string
	PriceUSD    string
	Features    PlanFeatures
}

func defaultPlans() []seedPlan {
	return []seedPlan{
		{
			Name:        models.PlanFree,
			DisplayName: "Free",
			PriceUSD:    "0",
			Features: PlanFeatures{
				MaxDailySessions:  1,
				MaxOpsPerSession:  3,
				MaxActiveGoals:    1,
				HistoryDays:       7,
				CanSeeProjections: false,
				CanExportReports:  false,
			},
		},
		{
			Name:        models.PlanBasic,
			DisplayName: "Basic",
			PriceUSD:    "4.99",
			Features: PlanFeatures{
				MaxDailySessions:  2,
				MaxOpsPerSession:  5,
				MaxActiveGoals:    1,
				HistoryDays:       30,
				CanSeeProjections: true,
				CanExportReports:  false,
			},
		},
		{
			Name:        models.PlanPro,
			DisplayName: "Pro",
			PriceUSD:    "9.99",
			Features: PlanFeatures{
				MaxDailySessions:  999,
				MaxOpsPerSession:  999,
				MaxActiveGoals:    999,
				HistoryDays:       365,
				CanSeeProjections: true,
				CanExportReports:  true,
			},
		},
	}
}

type PlanService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// EnsureDefaultPlans seeds the tier rows on startup. Existing rows are
// left untouched so operators can tune prices and limits in the database.
func (s *PlanService) EnsureDefaultPlans(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	for _, seed := range defaultPlans() {
		price, err := decimal.NewFromString(seed.PriceUSD)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(seed.Features)
		if err != nil {
			return err
		}
		item := &models.Plan{
			Name:        seed.Name,
			DisplayName: seed.DisplayName,
			PriceUSD:    price,
			Features:    datatypes.JSON(raw),
			IsActive:    true,
		}
		if err := s.Repo.UpsertPlan(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *PlanService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	return s.Repo.ListActivePlans(ctx)
}

// Subscribe switches the user to the named tier, cancelling any prior
// active subscription. Paid tiers get a 30-day term; FREE never expires.
func (s *PlanService) Subscribe(ctx context.Context, userID uint64, planName string) (*models.Subscription, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	planName = strings.ToUpper(strings.TrimSpace(planName))
	plan, err := s.Repo.GetPlanByName(ctx, planName)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperr.NotFound("plan %s not found", planName)
	}
	now := time.Now().UTC()
	current, err := s.Repo.GetActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		current.Status = models.SubscriptionStatusCanceled
		if err := s.Repo.SaveSubscription(ctx, current); err != nil {
			return nil, err
		}
	}
	provider := "manual"
	item := &models.Subscription{
		UserID:          userID,
		PlanID:          plan.ID,
		Status:          models.SubscriptionStatusActive,
		StartDate:       now,
		PaymentProvider: &provider,
	}
	if plan.Name != models.PlanFree {
		end := now.Add(30 * 24 * time.Hour)
		item.EndDate = &end
	}
	if err := s.Repo.InsertSubscription(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ExpireDue flips active subscriptions whose term has lapsed to EXPIRED.
// Invoked from the hourly cron sweep.
func (s *PlanService) ExpireDue(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	n, err := s.Repo.ExpireDueSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("expired subscriptions", zap.Int64("count", n))
	}
	return nil
}

// Capabilities is the single resolved gate value consumed by the session,
// operation and projections surfaces. It merges the stored subscription with
// the config-driven admin override so callers never branch on "real plan vs
// synthetic admin plan".
type Capabilities struct {
	PlanName string
	PlanFeatures
}

type CapabilityService struct {
	Repo   repository.Repository
	Admin  config.AdminConfig
	Logger *zap.Logger
}

func adminCapabilities() Capabilities {
	return Capabilities{
		PlanName: "ADMIN",
		PlanFeatures: PlanFeatures{
			MaxDailySessions:  999,
			MaxOpsPerSession:  999,
			MaxActiveGoals:    999,
			HistoryDays:       3650,
			CanSeeProjections: true,
			CanExportReports:  true,
		},
	}
}

// Resolve returns the caller's effective capabilities. Lookup order: admin
// override, then the plan behind the active subscription, then FREE. A user
// with no subscription row and no seeded FREE plan still gets the FREE
// defaults so gating degrades closed rather than open.
func (s *CapabilityService) Resolve(ctx context.Context, userID uint64, email string) Capabilities {
	if s.Admin.Bypass && s.Admin.Email != "" && strings.EqualFold(s.Admin.Email, email) {
		return adminCapabilities()
	}
	fallback := Capabilities{PlanName: models.PlanFree, PlanFeatures: defaultPlans()[0].Features}
	if s.Repo == nil {
		return fallback
	}
	sub, err := s.Repo.GetActiveSubscription(ctx, userID)
	if err != nil || sub == nil || !sub.IsActiveAt(time.Now().UTC()) {
		return fallback
	}
	plan, err := s.Repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil || plan == nil {
		return fallback
	}
	var features PlanFeatures
	if err := json.Unmarshal(plan.Features, &features); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("bad plan features payload", zap.String("plan", plan.Name), zap.Error(err))
		}
		return fallback
	}
	return Capabilities{PlanName: plan.Name, PlanFeatures: features}
}
