package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	configName = "v2n"
	configType = "yaml"
)

// Settings is the complete runtime configuration
type Settings struct {
	Development bool

	Server        ServerSettings
	Storage       StorageSettings
	Media         MediaSettings
	Credits       CreditSettings
	Transcription TranscriptionSettings
	Summarization SummarizationSettings
	OpenAI        OpenAISettings
	Gemini        GeminiSettings
	Auth          AuthSettings
	Archive       ArchiveSettings
}

type ServerSettings struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns host:port for net/http
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type StorageSettings struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
}

type MediaSettings struct {
	MaxFileSizeMB   int64
	AudioExtensions []string
	VideoExtensions []string
	WorkDir         string
	FFmpegPath      string
	FFprobePath     string
	YTDLPPath       string
	FetchTimeout    time.Duration
}

// MaxFileSize returns the ceiling in bytes
func (m MediaSettings) MaxFileSize() int64 {
	return m.MaxFileSizeMB * 1024 * 1024
}

type CreditSettings struct {
	StartingGrant       int
	TopUpCredits        int
	StaleReservationAge time.Duration
}

type TranscriptionSettings struct {
	Engine           string
	Model            string
	WhisperCppBinary string
	WhisperCppModel  string
	Timeout          time.Duration
}

type SummarizationSettings struct {
	Provider    string
	Model       string
	Temperature float32
	PromptsFile string
	Timeout     time.Duration
}

type OpenAISettings struct {
	APIKey  string
	BaseURL string
}

type GeminiSettings struct {
	APIKey string
	Model  string
}

type AuthSettings struct {
	JWTSecret     string
	WebhookSecret string
}

type ArchiveSettings struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

type binding struct {
	key string
	env string
	def interface{}
}

var bindings = []binding{
	{"development", "LOG_DEVELOPMENT", false},

	{"server.host", "HOST", "0.0.0.0"},
	{"server.port", "PORT", DefaultHTTPPort},
	{"server.read_timeout", "SERVER_READ_TIMEOUT", 5 * time.Minute},
	{"server.write_timeout", "SERVER_WRITE_TIMEOUT", 30 * time.Minute},

	{"storage.backend", "STORAGE_BACKEND", DefaultStorageBackend},
	{"storage.sqlite_path", "SQLITE_PATH", DefaultSQLitePath},
	{"storage.postgres_dsn", "DATABASE_URL", ""},

	{"media.max_file_size_mb", "MAX_FILE_SIZE_MB", DefaultMaxFileSizeMB},
	{"media.audio_extensions", "AUDIO_EXTENSIONS", DefaultAudioExtensions},
	{"media.video_extensions", "VIDEO_EXTENSIONS", DefaultVideoExtensions},
	{"media.work_dir", "MEDIA_WORK_DIR", ""},
	{"media.ffmpeg_path", "FFMPEG_PATH", "ffmpeg"},
	{"media.ffprobe_path", "FFPROBE_PATH", "ffprobe"},
	{"media.ytdlp_path", "YTDLP_PATH", ""},
	{"media.fetch_timeout", "FETCH_TIMEOUT", DefaultFetchTimeout},

	{"credits.starting_grant", "STARTING_CREDITS", DefaultStartingCredits},
	{"credits.top_up", "TOP_UP_CREDITS", DefaultTopUpCredits},
	{"credits.stale_reservation_age", "STALE_RESERVATION_AGE", DefaultStaleReservationAge},

	{"transcription.engine", "TRANSCRIPTION_ENGINE", DefaultTranscriptionEngine},
	{"transcription.model", "WHISPER_MODEL", DefaultWhisperModel},
	{"transcription.whisper_cpp_binary", "WHISPER_CPP_BINARY", ""},
	{"transcription.whisper_cpp_model", "WHISPER_CPP_MODEL", ""},
	{"transcription.timeout", "TRANSCRIPTION_TIMEOUT", DefaultTranscriptionTimeout},

	{"summarization.provider", "SUMMARIZER_PROVIDER", DefaultSummarizerProvider},
	{"summarization.model", "SUMMARIZER_MODEL", ""},
	{"summarization.temperature", "SUMMARIZER_TEMPERATURE", DefaultSummarizerTemperature},
	{"summarization.prompts_file", "PROMPTS_FILE", ""},
	{"summarization.timeout", "SUMMARIZER_TIMEOUT", DefaultSummarizerTimeout},

	{"openai.api_key", "OPENAI_API_KEY", ""},
	{"openai.base_url", "OPENAI_BASE_URL", ""},
	{"gemini.api_key", "GEMINI_API_KEY", ""},
	{"gemini.model", "GEMINI_MODEL", DefaultGeminiModel},

	{"auth.jwt_secret", "JWT_SECRET", ""},
	{"auth.webhook_secret", "PAYMENT_WEBHOOK_SECRET", ""},

	{"archive.enabled", "ARCHIVE_ENABLED", false},
	{"archive.endpoint", "MINIO_ENDPOINT", ""},
	{"archive.access_key", "MINIO_ACCESS_KEY", ""},
	{"archive.secret_key", "MINIO_SECRET_KEY", ""},
	{"archive.bucket", "MINIO_BUCKET", DefaultArchiveBucket},
	{"archive.use_ssl", "MINIO_USE_SSL", false},
	{"archive.url_expiry", "ARCHIVE_URL_EXPIRY", DefaultArchiveURLExpiry},
}

// Load resolves settings from defaults, an optional v2n.yaml (current
// directory or $HOME/.config/v2n) and the environment, in increasing order
// of precedence.
func Load(v *viper.Viper) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}

	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/v2n")
	}
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	s := &Settings{
		Development: v.GetBool("development"),
		Server: ServerSettings{
			Host:         v.GetString("server.host"),
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Storage: StorageSettings{
			Backend:     strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Media: MediaSettings{
			MaxFileSizeMB:   v.GetInt64("media.max_file_size_mb"),
			AudioExtensions: extensionList(v.Get("media.audio_extensions")),
			VideoExtensions: extensionList(v.Get("media.video_extensions")),
			WorkDir:         v.GetString("media.work_dir"),
			FFmpegPath:      v.GetString("media.ffmpeg_path"),
			FFprobePath:     v.GetString("media.ffprobe_path"),
			YTDLPPath:       v.GetString("media.ytdlp_path"),
			FetchTimeout:    v.GetDuration("media.fetch_timeout"),
		},
		Credits: CreditSettings{
			StartingGrant:       v.GetInt("credits.starting_grant"),
			TopUpCredits:        v.GetInt("credits.top_up"),
			StaleReservationAge: v.GetDuration("credits.stale_reservation_age"),
		},
		Transcription: TranscriptionSettings{
			Engine:           strings.ToLower(v.GetString("transcription.engine")),
			Model:            v.GetString("transcription.model"),
			WhisperCppBinary: v.GetString("transcription.whisper_cpp_binary"),
			WhisperCppModel:  v.GetString("transcription.whisper_cpp_model"),
			Timeout:          v.GetDuration("transcription.timeout"),
		},
		Summarization: SummarizationSettings{
			Provider:    strings.ToLower(v.GetString("summarization.provider")),
			Model:       v.GetString("summarization.model"),
			Temperature: float32(v.GetFloat64("summarization.temperature")),
			PromptsFile: v.GetString("summarization.prompts_file"),
			Timeout:     v.GetDuration("summarization.timeout"),
		},
		OpenAI: OpenAISettings{
			APIKey:  strings.TrimSpace(v.GetString("openai.api_key")),
			BaseURL: v.GetString("openai.base_url"),
		},
		Gemini: GeminiSettings{
			APIKey: strings.TrimSpace(v.GetString("gemini.api_key")),
			Model:  v.GetString("gemini.model"),
		},
		Auth: AuthSettings{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			WebhookSecret: v.GetString("auth.webhook_secret"),
		},
		Archive: ArchiveSettings{
			Enabled:   v.GetBool("archive.enabled"),
			Endpoint:  v.GetString("archive.endpoint"),
			AccessKey: v.GetString("archive.access_key"),
			SecretKey: v.GetString("archive.secret_key"),
			Bucket:    v.GetString("archive.bucket"),
			UseSSL:    v.GetBool("archive.use_ssl"),
			URLExpiry: v.GetDuration("archive.url_expiry"),
		},
	}

	if s.Summarization.Model == "" {
		s.Summarization.Model = DefaultSummarizerModel
		if s.Summarization.Provider == ProviderGemini {
			s.Summarization.Model = s.Gemini.Model
		}
	}

	return s, nil
}

// extensionList accepts either a comma separated string or a YAML list and
// returns lower-cased, dot-prefixed, de-duplicated extensions.
func extensionList(raw interface{}) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []interface{}:
		items = lo.Map(val, func(item interface{}, _ int) string { return fmt.Sprint(item) })
	}
	return lo.Uniq(lo.FilterMap(items, func(item string, _ int) (string, bool) {
		ext := strings.ToLower(strings.TrimSpace(item))
		if ext == "" {
			return "", false
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext, true
	}))
}

// Validate checks what every command needs: storage, media limits, credits
func (s *Settings) Validate() error {
	if err := ValidateOneOf(s.Storage.Backend, "STORAGE_BACKEND", BackendSQLite, BackendPostgres); err != nil {
		return err
	}
	switch s.Storage.Backend {
	case BackendSQLite:
		if s.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if s.Storage.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	}

	if s.Media.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be positive")
	}
	if len(s.Media.AudioExtensions) == 0 && len(s.Media.VideoExtensions) == 0 {
		return fmt.Errorf("at least one audio or video extension must be allowed")
	}
	if err := ValidateTimeout(s.Media.FetchTimeout, "fetch"); err != nil {
		return err
	}

	if s.Credits.StartingGrant < 0 {
		return fmt.Errorf("STARTING_CREDITS cannot be negative")
	}
	if s.Credits.TopUpCredits <= 0 {
		return fmt.Errorf("TOP_UP_CREDITS must be positive")
	}
	if s.Credits.StaleReservationAge <= 0 {
		return fmt.Errorf("STALE_RESERVATION_AGE must be positive")
	}
	return nil
}

// ValidateProviders checks the AI engines and their credentials
func (s *Settings) ValidateProviders() error {
	if err := ValidateOneOf(s.Transcription.Engine, "TRANSCRIPTION_ENGINE", EngineOpenAI, EngineWhisperCpp); err != nil {
		return err
	}
	switch s.Transcription.Engine {
	case EngineOpenAI:
		if err := ValidateAPIKey(s.OpenAI.APIKey, "OpenAI"); err != nil {
			return err
		}
	case EngineWhisperCpp:
		if s.Transcription.WhisperCppBinary == "" || s.Transcription.WhisperCppModel == "" {
			return fmt.Errorf("WHISPER_CPP_BINARY and WHISPER_CPP_MODEL must be set for the whisper_cpp engine")
		}
	}
	if err := ValidateTimeout(s.Transcription.Timeout, "transcription"); err != nil {
		return err
	}

	if err := ValidateOneOf(s.Summarization.Provider, "SUMMARIZER_PROVIDER", ProviderOpenAI, ProviderGemini); err != nil {
		return err
	}
	switch s.Summarization.Provider {
	case ProviderOpenAI:
		if err := ValidateAPIKey(s.OpenAI.APIKey, "OpenAI"); err != nil {
			return err
		}
	case ProviderGemini:
		if err := ValidateAPIKey(s.Gemini.APIKey, "Gemini"); err != nil {
			return err
		}
	}
	if s.Summarization.Temperature < 0 || s.Summarization.Temperature > 2 {
		return fmt.Errorf("SUMMARIZER_TEMPERATURE must be between 0 and 2")
	}
	if err := ValidateTimeout(s.Summarization.Timeout, "summarization"); err != nil {
		return err
	}

	if s.OpenAI.BaseURL != "" {
		if err := ValidateURL(s.OpenAI.BaseURL, "OPENAI_BASE"); err != nil {
			return err
		}
	}
	return nil
}

// ValidateServer checks what the HTTP server needs on top of Validate
func (s *Settings) ValidateServer() error {
	if err := ValidatePort(s.Server.Port, "HTTP"); err != nil {
		return err
	}
	if err := ValidateSecret(s.Auth.JWTSecret, "JWT_SECRET"); err != nil {
		return err
	}
	if s.Auth.WebhookSecret != "" {
		if err := ValidateSecret(s.Auth.WebhookSecret, "PAYMENT_WEBHOOK_SECRET"); err != nil {
			return err
		}
	}
	if s.Archive.Enabled {
		if s.Archive.Endpoint == "" || s.Archive.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required when ARCHIVE_ENABLED is set")
		}
	}
	return nil
}
