package analyze

import (
	"fmt"

	"github.com/spf13/cobra"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/app/pipeline"
)

var (
	accountRef      string
	transcriptionID int64
	instruction     string
	includeNotes    bool
	title           string
)

func init() {
	Cmd.Flags().StringVarP(&accountRef, "account", "a", "", "Account id or username that owns the transcription")
	Cmd.Flags().Int64VarP(&transcriptionID, "id", "i", 0, "Saved transcription to analyze")
	Cmd.Flags().StringVarP(&instruction, "instruction", "q", "", "What to ask about the transcript")
	Cmd.Flags().BoolVar(&includeNotes, "include-notes", false, "Also give the model the previously generated notes")
	Cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the saved answer")

	_ = Cmd.MarkFlagRequired("account")
	_ = Cmd.MarkFlagRequired("id")
	_ = Cmd.MarkFlagRequired("instruction")
}

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a custom instruction over a saved transcription",
	Long: `Run a custom instruction over a saved transcription

- Costs one credit, returned when the model call fails
- The answer is saved as a new history entry`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.Runtime()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := cmdutil.SignalContext()
		defer stop()

		account, err := cmdutil.ResolveAccount(ctx, rt, accountRef)
		if err != nil {
			return err
		}

		out := rt.Orchestrator.Analyze(ctx, pipeline.AnalyzeRequest{
			AccountID:         account.ID,
			TranscriptionID:   transcriptionID,
			Instruction:       instruction,
			IncludePriorNotes: includeNotes,
			Title:             title,
		})
		if !out.Completed() {
			return fmt.Errorf("analysis %s: %w", out.State, out.Err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n\n", out.Analysis)
		fmt.Fprintf(w, "saved as #%d %q\n", out.SavedID, out.Title)
		for _, warning := range out.Warnings {
			fmt.Fprintf(w, "warning: %v\n", warning)
		}
		if out.BalanceKnown {
			fmt.Fprintf(w, "credits left: %d\n", out.Balance)
		}
		return nil
	},
}
