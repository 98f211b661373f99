package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"media-notes/internal/app/model"
)

func TestSummaryFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "meeting_summary_20240309_140507.txt", SummaryFileName(ts))
}

func TestSummaryText(t *testing.T) {
	saved := &model.SavedTranscription{Transcript: "hello", Notes: "**Key Decisions**\n- ship"}
	assert.Equal(t, "📌 **Transcription:**\nhello\n\n📝 **Notes:**\n**Key Decisions**\n- ship", SummaryText(saved))

	prompt, notes := "List risks", "- none"
	saved.CustomPrompt = &prompt
	saved.CustomNotes = &notes
	text := SummaryText(saved)
	assert.Contains(t, text, "**Custom analysis (List risks):**\n- none")
}

func TestToExcel(t *testing.T) {
	prompt, custom := "Summarize", "short"
	rows := []model.SavedTranscription{
		{ID: 2, Title: "Weekly", Transcript: "t2", Notes: "n2", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: 1, Title: "Kickoff", Transcript: "t1", Notes: "n1", CustomPrompt: &prompt, CustomNotes: &custom},
	}
	path := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, ToExcel(rows, path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Title", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Weekly", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "2024-01-02T03:04:05Z", sheet.Rows[1].Cells[2].Value)
	assert.Equal(t, "Summarize", sheet.Rows[2].Cells[5].Value)
	assert.Equal(t, "short", sheet.Rows[2].Cells[6].Value)
}
