package config

import "time"

// Defaults
const (
	DefaultHTTPPort = "8080"

	DefaultStorageBackend = BackendSQLite
	DefaultSQLitePath     = "data/notes.db"

	DefaultMaxFileSizeMB   = 500
	DefaultAudioExtensions = ".wav,.mp3,.m4a,.flac"
	DefaultVideoExtensions = ".mp4,.mov,.avi,.mkv"
	DefaultFetchTimeout    = 10 * time.Minute

	DefaultStartingCredits     = 3
	DefaultTopUpCredits        = 30
	DefaultStaleReservationAge = 2 * time.Hour

	DefaultTranscriptionEngine  = EngineOpenAI
	DefaultWhisperModel         = "whisper-1"
	DefaultTranscriptionTimeout = 10 * time.Minute

	DefaultSummarizerProvider    = ProviderOpenAI
	DefaultSummarizerModel       = "gpt-4o-mini"
	DefaultGeminiModel           = "gemini-2.0-flash"
	DefaultSummarizerTemperature = 0.7
	DefaultSummarizerTimeout     = 5 * time.Minute

	DefaultArchiveBucket    = "meeting-summaries"
	DefaultArchiveURLExpiry = 24 * time.Hour
)

// Storage backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Transcription engines
const (
	EngineOpenAI     = "openai"
	EngineWhisperCpp = "whisper_cpp"
)

// Summarization providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)
