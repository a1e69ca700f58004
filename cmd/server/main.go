package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradegoal/internal/config"
	cronrunner "tradegoal/internal/cron"
	"tradegoal/internal/db"
	"tradegoal/internal/handler"
	"tradegoal/internal/logger"
	"tradegoal/internal/middleware"
	gormrepository "tradegoal/internal/repository/gorm"
	"tradegoal/internal/service"
)

func main() {
	cfgPath := os.Getenv("TG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TG_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret must be set")
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	planSvc := &service.PlanService{Repo: store, Logger: logger}
	if err := planSvc.EnsureDefaultPlans(context.Background()); err != nil {
		logger.Warn("seed default plans failed", zap.Error(err))
	}
	capSvc := &service.CapabilityService{Repo: store, Admin: cfg.Admin, Logger: logger}

	ledger := &service.Ledger{Repo: store}
	calendarSvc := &service.CalendarService{Repo: store, Logger: logger}
	accountSvc := &service.AccountService{Repo: store}
	sessionSvc := &service.SessionService{Repo: store, Caps: capSvc, Rules: cfg.Trading, Logger: logger}
	operationSvc := &service.OperationService{
		Repo:     store,
		Sessions: sessionSvc,
		Ledger:   ledger,
		Calendar: calendarSvc,
		Caps:     capSvc,
		Rules:    cfg.Trading,
		Logger:   logger,
	}
	goalSvc := &service.GoalService{Repo: store, Calendar: calendarSvc, Logger: logger}
	withdrawalSvc := &service.WithdrawalService{Repo: store, Ledger: ledger, Calendar: calendarSvc, Logger: logger}
	plannerSvc := &service.PlannerService{Repo: store, Projections: cfg.Projections}
	reportsSvc := &service.ReportsService{Repo: store}
	authSvc := &service.AuthService{
		Repo:      store,
		Plans:     planSvc,
		Logger:    logger,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())

	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	authHandler := &handler.AuthHandler{Auth: authSvc}
	authHandler.Register(engine)
	accountHandler := &handler.AccountHandler{Accounts: accountSvc}
	accountHandler.Register(engine, auth)
	sessionHandler := &handler.SessionHandler{Sessions: sessionSvc}
	sessionHandler.Register(engine, auth)
	operationHandler := &handler.OperationHandler{Operations: operationSvc}
	operationHandler.Register(engine, auth)
	goalHandler := &handler.GoalHandler{Goals: goalSvc, Calendar: calendarSvc}
	goalHandler.Register(engine, auth)
	withdrawalHandler := &handler.WithdrawalHandler{Withdrawals: withdrawalSvc}
	withdrawalHandler.Register(engine, auth)
	plannerHandler := &handler.PlannerHandler{Planner: plannerSvc, Caps: capSvc}
	plannerHandler.Register(engine, auth)
	planHandler := &handler.PlanHandler{Plans: planSvc, Caps: capSvc}
	planHandler.Register(engine, auth)
	reportsHandler := &handler.ReportsHandler{Reports: reportsSvc}
	reportsHandler.Register(engine, auth)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add("calendar-refresh", cfg.Cron.CalendarRefresh, func(ctx context.Context) {
			ids, err := store.ListOpenGoalIDs(ctx)
			if err != nil {
				logger.Warn("cron calendar refresh: list goals failed", zap.Error(err))
				return
			}
			refreshed := 0
			for _, id := range ids {
				if err := calendarSvc.Regenerate(ctx, id); err != nil {
					logger.Warn("cron calendar refresh failed", zap.Uint64("goal_id", id), zap.Error(err))
					continue
				}
				refreshed++
			}
			logger.Info("cron calendar refresh ok", zap.Int("goals", refreshed))
		})
		if err != nil {
			logger.Fatal("cron calendar refresh schedule invalid", zap.Error(err))
		}
		_, err = cronRunner.Add("subscription-sweep", cfg.Cron.SubscriptionSweep, func(ctx context.Context) {
			if err := planSvc.ExpireDue(ctx); err != nil {
				logger.Warn("cron subscription sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("cron subscription sweep schedule invalid", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
