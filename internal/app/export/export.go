package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"media-notes/internal/app/model"
)

// SummaryFileName names the downloadable summary for a job finished at t
func SummaryFileName(t time.Time) string {
	return fmt.Sprintf("meeting_summary_%s.txt", t.Format("20060102_150405"))
}

// SummaryText renders the transcript and notes as the downloadable text file.
// A custom analysis is appended when present.
func SummaryText(t *model.SavedTranscription) string {
	var b strings.Builder
	b.WriteString("📌 **Transcription:**\n")
	b.WriteString(t.Transcript)
	b.WriteString("\n\n📝 **Notes:**\n")
	b.WriteString(t.Notes)
	if t.CustomNotes != nil && *t.CustomNotes != "" {
		b.WriteString("\n\n🔍 **Custom analysis")
		if t.CustomPrompt != nil && *t.CustomPrompt != "" {
			fmt.Fprintf(&b, " (%s)", *t.CustomPrompt)
		}
		b.WriteString(":**\n")
		b.WriteString(*t.CustomNotes)
	}
	return b.String()
}

// ToExcel writes saved transcriptions to an xlsx workbook
func ToExcel(transcriptions []model.SavedTranscription, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range []string{"ID", "Title", "Created At", "Transcript", "Notes", "Custom Prompt", "Custom Notes"} {
		headerRow.AddCell().Value = header
	}

	for _, t := range transcriptions {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(t.ID)
		row.AddCell().Value = t.Title
		row.AddCell().Value = t.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = t.Transcript
		row.AddCell().Value = t.Notes
		row.AddCell().Value = deref(t.CustomPrompt)
		row.AddCell().Value = deref(t.CustomNotes)
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save %s: %w", outputFilePath, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
