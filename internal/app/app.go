package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/sociograph/auth-service/internal/config"
	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/handler"
	"github.com/sociograph/auth-service/internal/repository"
	"github.com/sociograph/auth-service/internal/service"
	"github.com/sociograph/auth-service/internal/utils"
	"github.com/sociograph/auth-service/pkg/mailer"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(ctx context.Context, infra Infrastructure, cfg *config.Config) (*App, error) {
	repos, err := repository.NewRepositories(ctx, infra.Mongo())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	phoneCipher, err := utils.NewPhoneCipher(cfg.Security.PhoneCipherKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize phone cipher: %w", err)
	}

	tokenIssuer := utils.NewTokenIssuer(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
		cfg.JWT.TwoFactorExpiry.Duration,
		cfg.JWT.RecoveryExpiry.Duration,
	)

	notifier := service.NewEmailNotifier(
		mailer.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From),
		infra.Logger(),
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos,
		tokenIssuer,
		notifier,
		service.NewGoogleVerifier(cfg.Google.WebClientID),
		phoneCipher,
		cfg.Security.BCryptCost,
		cfg.OTP.Expiry.Duration,
		infra.Logger(),
	)

	profileService := service.NewProfileService(
		repos,
		notifier,
		cfg.Security.BCryptCost,
		cfg.OTP.Expiry.Duration,
	)

	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)

	router := gin.Default()
	router.Use(otelgin.Middleware("auth-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, profileHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", gin.WrapH(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	prefix := cfg.JWT.TokenPrefix
	rateLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)

	accessOnly := handler.AuthMiddleware(authService, prefix, domain.TokenKindAccess)
	refreshOnly := handler.RefreshMiddleware(authService, prefix)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rateLimit, authHandler.SignUp)
			auth.PATCH("/confirm", authHandler.ConfirmEmail)
			auth.POST("/auth-gmail", rateLimit, authHandler.GoogleAuth)
			auth.POST("/login", rateLimit, authHandler.Login)
			auth.POST("/login-with-2fa",
				handler.AuthMiddleware(authService, prefix, domain.TokenKindTwoFactor),
				authHandler.TwoFactorLogin,
			)
			auth.POST("/logout", accessOnly, refreshOnly, authHandler.Logout)
			auth.PATCH("/refresh-token", refreshOnly, authHandler.Refresh)
			auth.POST("/forget-password", rateLimit, authHandler.ForgetPassword)
			auth.PATCH("/reset-password",
				handler.AuthMiddleware(authService, prefix, domain.TokenKindRecovery),
				authHandler.ResetPassword,
			)
			auth.POST("/2fa-enable", accessOnly, authHandler.EnableTwoFactor)
			auth.PATCH("/2fa-confirm-enable", accessOnly, authHandler.ConfirmTwoFactor)
			auth.PATCH("/2fa-disable", accessOnly, authHandler.DisableTwoFactor)
		}

		profile := api.Group("/profile")
		{
			profile.PATCH("/deactivate", accessOnly, refreshOnly, profileHandler.Deactivate)
			profile.POST("/change-email", accessOnly, profileHandler.ChangeEmail)
			profile.PATCH("/confirm-email-change", accessOnly, refreshOnly, profileHandler.ConfirmEmailChange)
			profile.PATCH("/update-password", accessOnly, refreshOnly, profileHandler.UpdatePassword)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
