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

	"github.com/thirdweb-example/community-rewards/config"
	"github.com/thirdweb-example/community-rewards/internal/adapter/gateway"
	adapterhandler "github.com/thirdweb-example/community-rewards/internal/adapter/handler"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/issuance"
	infrasession "github.com/thirdweb-example/community-rewards/internal/infrastructure/session"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/signer"
	"github.com/thirdweb-example/community-rewards/internal/usecase"
	appmiddleware "github.com/thirdweb-example/community-rewards/middleware"
	"github.com/thirdweb-example/community-rewards/utils/logger"
	"github.com/thirdweb-example/community-rewards/utils/otel"

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration. A missing signing key fails here, before the
	// server can accept a single issuance request.
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"discord_api_url", cfg.DiscordAPIURL,
		"guild_id", cfg.DiscordGuildID,
		"chain_id", cfg.ChainID,
		"port", cfg.Port)

	// Infrastructure
	discordGW := gateway.NewDiscordGateway(cfg.DiscordAPIURL, cfg.DiscordCDNURL, 5*time.Second)
	oauthGW := gateway.NewDiscordOAuth(gateway.OAuthConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		APIBaseURL:   cfg.DiscordAPIURL,
	})
	sessionCodec := infrasession.NewCodec(infrasession.Config{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
	})
	mintSigner, err := signer.NewMintRequestSigner(signer.Config{
		PrivateKeyHex:   cfg.WalletPrivateKey,
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
		SignatureTTL:    cfg.SignatureTTL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize mint signer", "error", err)
		os.Exit(1)
	}
	guard := issuance.NewGuard(cfg.IssuanceWindow)

	slog.InfoContext(ctx, "mint signer initialized",
		"signer_address", mintSigner.SignerAddress().Hex(),
		"contract", cfg.ContractAddress)

	// Usecases
	membershipUC := usecase.NewCheckMembership(discordGW, cfg.DiscordGuildID, slog.Default())
	issueUC := usecase.NewIssueMintAuthorization(membershipUC, mintSigner, guard,
		cfg.TokenMetadata(), slog.Default())
	signInUC := usecase.NewSignIn(oauthGW, discordGW, sessionCodec, cfg.SessionTTL, slog.Default())

	// Handlers
	membershipHandler := adapterhandler.NewMembershipHandler(membershipUC, sessionCodec)
	signatureHandler := adapterhandler.NewSignatureHandler(issueUC, sessionCodec)
	authHandler := adapterhandler.NewAuthHandler(signInUC, oauthGW, sessionCodec)
	healthHandler := adapterhandler.NewHealthHandler(otelCfg.ServiceName)

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

	// Rate limiters per endpoint group
	membershipRL := appmiddleware.NewRateLimiter(60.0/60.0, 10) // 60 req/min
	signatureRL := appmiddleware.NewRateLimiter(10.0/60.0, 3)   // 10 req/min
	authRL := appmiddleware.NewRateLimiter(30.0/60.0, 5)        // 30 req/min

	// Routes
	e.GET("/api/check-is-in-server", membershipHandler.Handle, membershipRL.Middleware())
	e.POST("/api/generate-signature", signatureHandler.Handle, signatureRL.Middleware())
	e.GET("/api/auth/signin", authHandler.HandleSignIn, authRL.Middleware())
	e.GET("/api/auth/callback", authHandler.HandleCallback, authRL.Middleware())
	e.GET("/api/auth/session", authHandler.HandleSession, authRL.Middleware())
	e.POST("/api/auth/signout", authHandler.HandleSignOut, authRL.Middleware())
	e.GET("/health", healthHandler.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting rewards server", "address", address)

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
		port = "8788"
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
