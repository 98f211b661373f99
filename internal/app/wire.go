//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"media-notes/internal/config"
)

var storeSet = wire.NewSet(provideStore, provideLedger, provideAccounts)

var pipelineSet = wire.NewSet(
	provideRegistry,
	provideMetrics,
	provideFetcher,
	provideNormalizer,
	providePrompts,
	provideTranscriber,
	provideSummarizer,
	provideArchive,
	provideOrchestrator,
)

// InitializeApp builds the full job runtime from settings
func InitializeApp(settings *config.Settings) (*App, func(), error) {
	wire.Build(provideLogger, storeSet, pipelineSet, newApp)
	return nil, nil, nil
}

// InitializeAccounts builds only what account and ledger commands need,
// without AI clients
func InitializeAccounts(settings *config.Settings) (*App, func(), error) {
	wire.Build(provideLogger, storeSet, provideRegistry, provideMetrics, newAccountsApp)
	return nil, nil, nil
}
