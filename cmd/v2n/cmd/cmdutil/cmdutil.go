// Package cmdutil holds what every v2n subcommand shares: global flags,
// settings loading and runtime construction.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"media-notes/internal/app"
	"media-notes/internal/app/model"
	"media-notes/internal/config"
)

var (
	ConfigFile string
	Verbose    bool
)

// LoadSettings reads .env, the config file and the environment and checks
// the common settings
func LoadSettings() (*config.Settings, error) {
	if _, err := config.LoadEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	if ConfigFile != "" {
		v.SetConfigFile(ConfigFile)
	}
	settings, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if Verbose {
		settings.Development = true
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// Runtime builds the full job runtime, AI clients included
func Runtime() (*app.App, func(), error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	if err := settings.ValidateProviders(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.InitializeApp(settings)
}

// AccountsRuntime builds storage, ledger and accounts only
func AccountsRuntime() (*app.App, func(), error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeAccounts(settings)
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ResolveAccount finds an account by numeric id or username
func ResolveAccount(ctx context.Context, rt *app.App, ref string) (*model.Account, error) {
	if ref == "" {
		return nil, fmt.Errorf("--account is required")
	}
	return rt.Accounts.Lookup(ctx, ref)
}
