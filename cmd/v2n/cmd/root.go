package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"media-notes/cmd/v2n/cmd/account"
	"media-notes/cmd/v2n/cmd/analyze"
	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/cmd/v2n/cmd/history"
	"media-notes/cmd/v2n/cmd/migrate"
	"media-notes/cmd/v2n/cmd/process"
	"media-notes/cmd/v2n/cmd/serve"
	"media-notes/cmd/v2n/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "v2n",
	Short: "Turn recordings into transcripts and structured meeting notes",
	Long: `Turn recordings into transcripts and structured meeting notes.
- Every job costs one credit from the account's balance
- A failed job returns its credit
- Results are saved to the account's history`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(analyze.Cmd)
	rootCmd.AddCommand(account.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cmdutil.ConfigFile, "config", "", "config file (default is ./v2n.yaml or $HOME/.config/v2n/v2n.yaml)")
}
