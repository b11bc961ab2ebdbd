package commands

import (
	"context"
	"fmt"
	"os"

	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/config"
	"tgnvoda/internal/scrapers/tgnvoda"
	"tgnvoda/lib/restyutil"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	accountName string
	verbose     bool
	dumpDir     string
)

var rootCmd = &cobra.Command{
	Use:   "tgnvoda-cli",
	Short: "tgnvoda-cli reads billing and meter data from lk.tgnvoda.ru and submits meter readings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to tgnvoda.json5, searched for upwards from the working directory by default.")
	rootCmd.PersistentFlags().StringVar(&accountName, "account", "", "Name or account id of the configured account to use.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump-http", "", "Write every http exchange into this directory, with credentials redacted. The directory is cleared first.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadAccount() (config.Account, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return config.Account{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.Find(accountName)
}

func newClient(account config.Account) (*tgnvoda.Client, error) {
	opts := account.ClientOptions()
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, err
		}
		opts.Dump = output
	}
	return tgnvoda.NewClient(opts, telemetry.SlogAPI{})
}

// login creates a client for the selected account and authenticates it.
func login(ctx context.Context) (config.Account, *tgnvoda.Client, error) {
	account, err := loadAccount()
	if err != nil {
		return config.Account{}, nil, err
	}
	client, err := newClient(account)
	if err != nil {
		return config.Account{}, nil, err
	}
	err = client.Authenticate(ctx)
	if err != nil {
		return config.Account{}, nil, err
	}
	return account, client, nil
}
