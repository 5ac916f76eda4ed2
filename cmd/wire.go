package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mvaldes/invctl/internal/adapters/api"
	statusadapter "github.com/mvaldes/invctl/internal/adapters/render/status"
	tomlrepo "github.com/mvaldes/invctl/internal/adapters/repo/toml"
	filestorage "github.com/mvaldes/invctl/internal/adapters/storage/file"
	"github.com/mvaldes/invctl/internal/application"
	"github.com/mvaldes/invctl/internal/busy"
	"github.com/mvaldes/invctl/internal/ports"
	"github.com/mvaldes/invctl/internal/session"
	"github.com/mvaldes/invctl/internal/transport"
)

type app struct {
	authService    *application.AuthService
	store          *session.Store
	refresher      *session.Refresher
	aggregator     *busy.Aggregator
	products       *api.ProductsClient
	categories     *api.CategoriesClient
	movements      *api.MovementsClient
	users          *api.UsersClient
	roles          *api.RolesClient
	profiles       *tomlrepo.Repository
	backendURL     string
	statusRenderer func(statusadapter.Report, statusadapter.RenderOptions) (string, error)
	log            zerolog.Logger
	now            func() time.Time
}

func wireApp() (*app, error) {
	logger := newLogger()

	profiles, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	backendURL := resolveBackendURL(profiles)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	storage := filestorage.NewStore(filepath.Join(homeDir, ".invctl", "credentials"))
	store := session.NewStore(storage, logger)
	aggregator := busy.New(busy.Options{Logger: logger})
	console := newConsole(os.Stderr)

	// The refresher needs the auth client, the auth client needs the HTTP
	// client, and the HTTP client's transport needs the refresher. The
	// closure breaks the cycle; wiring finishes before any request runs.
	var refresher *session.Refresher
	renewer := transport.RenewerFunc(func(ctx context.Context) (session.Outcome, error) {
		return refresher.Refresh(ctx)
	})
	authTransport := transport.New(nil, store, renewer, aggregator, console, logger)
	httpClient := &http.Client{Transport: authTransport}

	apiClient, err := api.NewClient(backendURL, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}
	authClient := api.NewAuthClient(apiClient)
	refresher = session.NewRefresher(store, authClient, console, console, ports.SystemClock{}, logger)

	return &app{
		authService:    application.NewAuthService(store, authClient, ports.SystemClock{}, logger),
		store:          store,
		refresher:      refresher,
		aggregator:     aggregator,
		products:       api.NewProductsClient(apiClient),
		categories:     api.NewCategoriesClient(apiClient),
		movements:      api.NewMovementsClient(apiClient),
		users:          api.NewUsersClient(apiClient),
		roles:          api.NewRolesClient(apiClient),
		profiles:       profiles,
		backendURL:     backendURL,
		statusRenderer: statusadapter.Render,
		log:            logger,
		now:            time.Now,
	}, nil
}

func resolveBackendURL(profiles *tomlrepo.Repository) string {
	if fromEnv := os.Getenv("INVCTL_API_URL"); fromEnv != "" {
		return fromEnv
	}
	if profile, err := profiles.GetDefault(context.Background()); err == nil {
		return profile.BaseURL
	}
	return "http://localhost:8080"
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if parsed, err := zerolog.ParseLevel(envOrDefault("INVCTL_LOG_LEVEL", "warn")); err == nil {
		level = parsed
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
