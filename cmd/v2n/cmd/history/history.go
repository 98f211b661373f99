package history

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/app/export"
	"media-notes/internal/app/model"
)

var (
	accountRef     string
	outputFilePath string
)

func init() {
	Cmd.PersistentFlags().StringVarP(&accountRef, "account", "a", "", "Account id or username")
	_ = Cmd.MarkPersistentFlagRequired("account")

	exportCmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "Where to write the xlsx workbook")
	_ = exportCmd.MarkFlagRequired("outputFilePath")

	Cmd.AddCommand(listCmd, showCmd, exportCmd)
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved transcriptions",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved transcriptions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, accountRef)
		if err != nil {
			return err
		}
		items, err := rt.Store.ListTranscriptions(cmd.Context(), acc.ID)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tTITLE")
		for _, item := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.CreatedAt.Local().Format(time.DateTime), item.Title)
		}
		return tw.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the summary file of a saved transcription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, accountRef)
		if err != nil {
			return err
		}
		saved, err := rt.Store.GetTranscription(cmd.Context(), id, acc.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s\n", saved.Title, export.SummaryText(saved))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the account's transcriptions to excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, accountRef)
		if err != nil {
			return err
		}
		items, err := rt.Store.ListTranscriptions(cmd.Context(), acc.ID)
		if err != nil {
			return err
		}

		full := make([]model.SavedTranscription, 0, len(items))
		for _, item := range items {
			saved, err := rt.Store.GetTranscription(cmd.Context(), item.ID, acc.ID)
			if err != nil {
				return err
			}
			full = append(full, *saved)
		}

		if err := export.ToExcel(full, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, %d row(s) written to %v\n", len(full), outputFilePath)
		return nil
	},
}
