package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/app/model"
	"media-notes/internal/app/pipeline"
	"media-notes/internal/app/storage"
	"media-notes/internal/config"
)

var (
	accountRef     string
	mediaDir       string
	inputLanguage  string
	outputLanguage string
	title          string
	parallel       int
	archiveDir     string
	showProgress   bool
	printNotes     bool
)

func init() {
	Cmd.Flags().StringVarP(&accountRef, "account", "a", "", "Account id or username that pays for the jobs")
	Cmd.Flags().StringVarP(&mediaDir, "dir", "d", "", "Process every supported media file in this directory")
	Cmd.Flags().StringVarP(&inputLanguage, "lang", "l", model.LanguageAuto, "Spoken language (auto, pl, en, de, fr, es)")
	Cmd.Flags().StringVarP(&outputLanguage, "out-lang", "o", "en", "Notes language (pl, en, de, fr, es)")
	Cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the saved result; defaults to the current time")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "How many jobs run at once")
	Cmd.Flags().StringVar(&archiveDir, "archive-dir", "", "Also write each summary file into this directory")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress bars even when stderr is not a terminal")
	Cmd.Flags().BoolVar(&printNotes, "print", false, "Print the generated notes")

	_ = Cmd.MarkFlagRequired("account")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process [file or url]...",
	Short: "Transcribe media files or URLs and generate notes",
	Long: `Transcribe media files or URLs and generate notes

- Each input costs one credit, returned when the job fails
- Inputs are local files, http(s) URLs, or every supported file under --dir
- Results are saved to the account's history`,
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

		inputs := args
		if mediaDir != "" {
			found, err := scanDir(mediaDir, rt.Settings.Media)
			if err != nil {
				return err
			}
			inputs = append(inputs, found...)
		}
		if len(inputs) == 0 {
			return fmt.Errorf("nothing to process: pass files, URLs or --dir")
		}

		orchestrator := rt.Orchestrator
		if archiveDir != "" {
			orchestrator = orchestrator.WithArchive(storage.NewLocalArchive(archiveDir))
		}

		progress := pipeline.NewProgressManager(pipeline.ProgressConfig{
			Enabled: pipeline.ShouldShowProgress(showProgress),
			Writer:  cmd.ErrOrStderr(),
		})

		reqs := make([]pipeline.Request, 0, len(inputs))
		for _, input := range inputs {
			source, closer, err := openSource(input)
			if err != nil {
				return err
			}
			defer closer.Close()

			reqs = append(reqs, pipeline.Request{
				AccountID:      account.ID,
				Source:         source,
				InputLanguage:  inputLanguage,
				OutputLanguage: outputLanguage,
				Title:          title,
				Progress:       progress.Track(filepath.Base(input)),
			})
		}

		outcomes := orchestrator.SubmitAll(ctx, reqs, parallel)
		progress.Wait()

		failed := report(cmd.OutOrStdout(), inputs, outcomes)
		if balance, err := rt.Ledger.Balance(context.WithoutCancel(ctx), account.ID); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "credits left: %d\n", balance)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d job(s) failed", failed, len(outcomes))
		}
		return nil
	},
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSource returns the media source for input and what to close once
// the job is done
func openSource(input string) (model.MediaSource, io.Closer, error) {
	if isURL(input) {
		return model.RemoteSource(input), nopCloser{}, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return model.MediaSource{}, nil, fmt.Errorf("open %s: %w", input, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return model.MediaSource{}, nil, fmt.Errorf("stat %s: %w", input, err)
	}
	if info.IsDir() {
		f.Close()
		return model.MediaSource{}, nil, fmt.Errorf("%s is a directory, use --dir", input)
	}
	return model.UploadSource(&model.Upload{
		Name:      filepath.Base(input),
		Extension: filepath.Ext(input),
		Size:      info.Size(),
		Body:      f,
	}), f, nil
}

// scanDir lists files in dir with an allowed extension, sorted by name
func scanDir(dir string, media config.MediaSettings) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	allowed := append(append([]string{}, media.AudioExtensions...), media.VideoExtensions...)
	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() {
			return "", false
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		return filepath.Join(dir, e.Name()), lo.Contains(allowed, ext)
	})
	sort.Strings(files)
	return files, nil
}

func report(w io.Writer, inputs []string, outcomes []*pipeline.Outcome) int {
	failed := 0
	for i, out := range outcomes {
		if out.Completed() {
			fmt.Fprintf(w, "✓ %s -> #%d %q", inputs[i], out.SavedID, out.Title)
			if out.SummaryURL != "" {
				fmt.Fprintf(w, " (%s)", out.SummaryURL)
			}
			fmt.Fprintln(w)
			for _, warning := range out.Warnings {
				fmt.Fprintf(w, "  warning: %v\n", warning)
			}
			if printNotes {
				fmt.Fprintf(w, "\n%s\n\n", out.Notes)
			}
		} else {
			failed++
			fmt.Fprintf(w, "✗ %s: %s (%v)\n", inputs[i], out.State, out.Err)
		}
	}
	return failed
}
