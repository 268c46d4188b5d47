package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-web/config"
	"crm-web/internal/adapter/gateway"
	"crm-web/internal/adapter/handler"
	"crm-web/internal/infrastructure/cookie"
	"crm-web/internal/infrastructure/credential"
	"crm-web/internal/usecase"
	appmiddleware "crm-web/middleware"
	"crm-web/utils/logger"
	"crm-web/utils/otel"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Local development convenience; env wins over .env
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"authority", cfg.Authority,
		"api_base_url", cfg.APIBaseURL,
		"port", cfg.Port,
		"token_buffer", cfg.TokenBuffer)

	// Infrastructure
	credentials := credential.NewStore(cfg.AccountTTL)
	oauthGateway := gateway.NewOAuthGateway(gateway.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Authority:    cfg.Authority,
		RedirectURI:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
	}, credentials, 10*time.Second)
	backendClient := gateway.NewBackendClient(cfg.APIBaseURL, 15*time.Second)
	validate := validator.New()

	cookieOpts := cookie.Options{
		Secure:       cfg.Production,
		AccountTTL:   cfg.AccountTTL,
		CompanyTTL:   cfg.CompanyTTL,
		OAuthFlowTTL: cfg.OAuthFlowTTL,
	}

	// Usecases
	getTokenUC := usecase.NewGetToken(oauthGateway, cfg.TokenBuffer, slog.Default())
	beginLoginUC := usecase.NewBeginLogin(oauthGateway, slog.Default())
	completeLoginUC := usecase.NewCompleteLogin(oauthGateway, backendClient, slog.Default())
	selectCompanyUC := usecase.NewSelectCompany(slog.Default())
	registerUC := usecase.NewRegisterAccount(backendClient, validate, slog.Default())

	// Handlers
	loginHandler := handler.NewLoginHandler(beginLoginUC, completeLoginUC)
	companyHandler := handler.NewCompanyHandler(selectCompanyUC, validate)
	accountHandler := handler.NewAccountHandler(registerUC)
	healthHandler := handler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Request gate: identity resolution, login redirect, onboarding gate
	gate := appmiddleware.NewGate(getTokenUC, selectCompanyUC, backendClient, cookieOpts)
	e.Use(gate.Middleware())

	// Rate limiters per endpoint group
	loginRL := appmiddleware.NewRateLimiter(30, 5)
	apiRL := appmiddleware.NewRateLimiter(100, 10)

	// Authentication routes
	login := e.Group("/login", loginRL.Middleware())
	login.GET("/:provider", loginHandler.HandleBegin)
	login.GET("/:provider/callback", loginHandler.HandleCallback)
	e.POST("/logout", loginHandler.HandleLogout)

	// Session-scoped API routes
	api := e.Group("/api", apiRL.Middleware())
	api.GET("/current/company", companyHandler.HandleCurrent)
	api.POST("/current/company", companyHandler.HandleSwitch)
	api.GET("/session/me", accountHandler.HandleMe)
	api.POST("/account/register", accountHandler.HandleRegister)

	e.GET("/health", healthHandler.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting crm-web server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
