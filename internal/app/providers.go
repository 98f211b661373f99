package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"media-notes/internal/app/accounts"
	"media-notes/internal/app/api"
	"media-notes/internal/app/api/gemini"
	"media-notes/internal/app/api/openai"
	"media-notes/internal/app/api/openai/chat"
	"media-notes/internal/app/api/openai/whisper"
	"media-notes/internal/app/api/prompts"
	"media-notes/internal/app/api/whisper_cpp"
	"media-notes/internal/app/audio"
	"media-notes/internal/app/ledger"
	"media-notes/internal/app/logging"
	"media-notes/internal/app/metrics"
	"media-notes/internal/app/pipeline"
	"media-notes/internal/app/repository"
	"media-notes/internal/app/repository/pg"
	"media-notes/internal/app/repository/sqlite"
	"media-notes/internal/app/storage"
	"media-notes/internal/config"
	"media-notes/internal/downloader"
)

// App is everything a command needs to run jobs
type App struct {
	Settings     *config.Settings
	Logger       *zap.Logger
	Store        repository.Store
	Ledger       *ledger.Ledger
	Accounts     *accounts.Service
	Orchestrator *pipeline.Orchestrator
	Registry     *prometheus.Registry
}

func newApp(
	settings *config.Settings,
	logger *zap.Logger,
	store repository.Store,
	creditLedger *ledger.Ledger,
	accountService *accounts.Service,
	orchestrator *pipeline.Orchestrator,
	registry *prometheus.Registry,
) *App {
	return &App{
		Settings:     settings,
		Logger:       logger,
		Store:        store,
		Ledger:       creditLedger,
		Accounts:     accountService,
		Orchestrator: orchestrator,
		Registry:     registry,
	}
}

// newAccountsApp leaves Orchestrator nil
func newAccountsApp(
	settings *config.Settings,
	logger *zap.Logger,
	store repository.Store,
	creditLedger *ledger.Ledger,
	accountService *accounts.Service,
	registry *prometheus.Registry,
) *App {
	return newApp(settings, logger, store, creditLedger, accountService, nil, registry)
}

func provideLogger(settings *config.Settings) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(settings.Development)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideStore opens the configured backend and makes sure the schema exists
func provideStore(settings *config.Settings, logger *zap.Logger) (repository.Store, func(), error) {
	var (
		store repository.Store
		err   error
	)
	switch settings.Storage.Backend {
	case config.BackendPostgres:
		store, err = pg.NewPostgresDB(settings.Storage.PostgresDSN)
	case config.BackendSQLite:
		store, err = sqlite.NewSQLiteDB(settings.Storage.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", settings.Storage.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := store.InitSchema(context.Background()); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Debug("storage ready", zap.String("backend", settings.Storage.Backend))

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func provideMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.New(registry)
}

func provideAccounts(settings *config.Settings, store repository.Store, logger *zap.Logger) *accounts.Service {
	return accounts.NewService(store, settings.Credits.StartingGrant, logger)
}

func provideFetcher(settings *config.Settings, logger *zap.Logger) *downloader.Fetcher {
	client := &http.Client{Timeout: settings.Media.FetchTimeout}
	return downloader.NewFetcher(client, settings.Media.YTDLPPath, settings.Media.MaxFileSize(), logger)
}

func provideNormalizer(settings *config.Settings, fetcher *downloader.Fetcher, logger *zap.Logger) *audio.Normalizer {
	tool := audio.NewFFmpeg(settings.Media.FFmpegPath, settings.Media.FFprobePath)
	return audio.NewNormalizer(audio.Options{
		MaxFileSize:     settings.Media.MaxFileSize(),
		AudioExtensions: settings.Media.AudioExtensions,
		VideoExtensions: settings.Media.VideoExtensions,
		WorkDir:         settings.Media.WorkDir,
	}, tool, fetcher, logger)
}

func providePrompts(settings *config.Settings) (*prompts.Set, error) {
	return prompts.Load(settings.Summarization.PromptsFile)
}

// provideTranscriber picks the remote Whisper API or a local whisper.cpp build
func provideTranscriber(settings *config.Settings, logger *zap.Logger) (api.Transcriber, error) {
	switch settings.Transcription.Engine {
	case config.EngineOpenAI:
		client := openai.NewClient(settings.OpenAI.APIKey, settings.OpenAI.BaseURL, settings.Transcription.Timeout)
		return whisper.NewRemoteTranscriber(client, settings.Transcription.Model, logger), nil
	case config.EngineWhisperCpp:
		return whisper_cpp.NewLocalTranscriber(settings.Transcription.WhisperCppBinary, settings.Transcription.WhisperCppModel, logger), nil
	default:
		return nil, fmt.Errorf("unknown transcription engine %q", settings.Transcription.Engine)
	}
}

func provideSummarizer(settings *config.Settings, set *prompts.Set, logger *zap.Logger) (api.Summarizer, error) {
	s := settings.Summarization
	switch s.Provider {
	case config.ProviderOpenAI:
		client := openai.NewClient(settings.OpenAI.APIKey, settings.OpenAI.BaseURL, s.Timeout)
		return chat.NewSummarizer(client, s.Model, s.Temperature, set, logger), nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), settings.Gemini.APIKey, "")
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return gemini.NewSummarizer(client, s.Model, s.Temperature, set, logger), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", s.Provider)
	}
}

// provideArchive returns nil when archiving is off
func provideArchive(settings *config.Settings, logger *zap.Logger) (pipeline.Archiver, error) {
	a := settings.Archive
	if !a.Enabled {
		return nil, nil
	}
	archive, err := storage.NewMinioArchive(context.Background(), storage.MinioConfig{
		Endpoint:  a.Endpoint,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Bucket:    a.Bucket,
		UseSSL:    a.UseSSL,
		URLExpiry: a.URLExpiry,
	}, logger)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func provideLedger(store repository.Store, logger *zap.Logger, m *metrics.Metrics) *ledger.Ledger {
	return ledger.NewLedger(store, logger, m)
}

func provideOrchestrator(
	creditLedger *ledger.Ledger,
	normalizer *audio.Normalizer,
	transcriber api.Transcriber,
	summarizer api.Summarizer,
	store repository.Store,
	archive pipeline.Archiver,
	m *metrics.Metrics,
	logger *zap.Logger,
) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(creditLedger, normalizer, transcriber, summarizer, store, archive, m, logger)
}
