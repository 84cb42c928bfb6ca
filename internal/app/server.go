// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"contenthub-service/internal/config"
	"contenthub-service/internal/db"
	authHandler "contenthub-service/internal/handlers/auth"
	authorHandler "contenthub-service/internal/handlers/author"
	contentHandler "contenthub-service/internal/handlers/content"
	subscriptionHandler "contenthub-service/internal/handlers/subscription"
	webhookHandler "contenthub-service/internal/handlers/webhook"
	wsHandler "contenthub-service/internal/handlers/websocket"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/session"
	"contenthub-service/internal/repository/postgres"
	authUsecase "contenthub-service/internal/service/auth"
	authorUsecase "contenthub-service/internal/service/author"
	contentUsecase "contenthub-service/internal/service/content"
	"contenthub-service/internal/service/email"
	notifyUsecase "contenthub-service/internal/service/notification"
	"contenthub-service/internal/service/payment"
	planUsecase "contenthub-service/internal/service/plan"
	subscriptionUsecase "contenthub-service/internal/service/subscription"
	webhookUsecase "contenthub-service/internal/service/webhook"
	"contenthub-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	hub   *websocket.Hub
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start wires every dependency, serves HTTP until ctx is cancelled and then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	defer s.close()
	if err := s.setup(ctx); err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

func (s *Server) setup(ctx context.Context) error {
	logger := s.logger

	// ----- Migrations -----
	if s.cfg.AutoMigrate {
		if err := db.NewMigrator(s.cfg.DatabaseURL, s.cfg.MigrationsPath, logger).Up(); err != nil {
			return err
		}
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL, s.cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	s.redis = redisClient
	logger.Info("connected to Redis")

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient, s.cfg.MaxDevices)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Email -----
	var sender email.Sender = email.NoopSender{}
	if s.cfg.MailEnabled() {
		smtp, err := email.NewEmailSender(
			s.cfg.SMTPHost,
			s.cfg.SMTPPort,
			s.cfg.SMTPUser,
			s.cfg.SMTPPass,
			s.cfg.SMTPFrom,
			s.cfg.SMTPFromName,
		)
		if err != nil {
			return err
		}
		sender = smtp
	} else {
		logger.Warn("SMTP_HOST not set, outgoing email disabled")
	}
	mail := email.NewHelper(sender, logger)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	authorRepo := postgres.NewAuthorRepository(pool)
	contentRepo := postgres.NewContentRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)

	// ----- WebSocket Hub -----
	s.hub = websocket.NewHub(jwtManager.Verifier, sessionManager, logger)

	// ----- Billing -----
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     s.cfg.StripeSecretKey,
		WebhookSecret: s.cfg.StripeWebhookSecret,
	}, logger)

	// ----- Services (Usecases) -----
	notifService := notifyUsecase.NewNotificationService(s.hub, mail, logger)
	authService := authUsecase.NewAuthService(
		userRepo,
		jwtManager,
		sessionManager,
		rateLimiter,
		mail,
		s.hub,
		logger,
	)
	authorService := authorUsecase.NewAuthorService(authorRepo, userRepo, logger)
	contentService := contentUsecase.NewContentService(contentRepo, authorRepo, logger)
	planService := planUsecase.NewPlanService(planRepo, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(
		ledgerRepo,
		planRepo,
		userRepo,
		gateway,
		notifService,
		subscriptionUsecase.Config{
			Currency:   s.cfg.StripeCurrency,
			SuccessURL: s.cfg.CheckoutSuccessURL,
			CancelURL:  s.cfg.CheckoutCancelURL,
		},
		logger,
	)
	reconciler := webhookUsecase.NewReconciler(
		gateway,
		ledgerRepo,
		userRepo,
		planRepo,
		notifService,
		logger,
	)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.Metrics(),
		middleware.RecoveryMiddleware(logger),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(authService, logger),
		AuthorHandler:       authorHandler.NewAuthorHandler(authorService, logger),
		ContentHandler:      contentHandler.NewContentHandler(contentService, logger),
		PlanHandler:         subscriptionHandler.NewPlanHandler(planService, logger),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(subscriptionService, logger),
		WebhookHandler:      webhookHandler.NewStripeHandler(reconciler, logger),
		WSHandler:           wsHandler.NewWebSocketHandler(s.hub, s.cfg.CORSAllowedOrigins, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(authService, logger),
	})
	return nil
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("failed to close Redis client", zap.Error(err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
