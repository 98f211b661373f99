package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "media-notes/internal/app/testutil"
)

func TestDisabledProgressManager(t *testing.T) {
	pm := NewProgressManager(ProgressConfig{Enabled: false})
	assert.Nil(t, pm.Track("meeting.mp3"))
	assert.NotPanics(t, func() {
		pm.Wait()
		pm.Shutdown()
	})
}

func TestProgressBarFollowsJob(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(ProgressConfig{Enabled: true, Writer: &buf})

	ok := pm.Track("ok.mp3")
	failed := pm.Track("bad.mp3")
	require.NotNil(t, ok)

	for _, s := range []State{StateReserved, StateNormalizing, StateTranscribing, StateSummarizing, StatePersisting, StateCompleted} {
		ok("job-1", s)
	}
	failed("job-2", StateReserved)
	failed("job-2", StateFailed)

	pm.Wait()
	assert.Contains(t, buf.String(), "ok.mp3")
}

func TestChainSkipsNil(t *testing.T) {
	assert.Nil(t, Chain(nil, nil))

	var seen []State
	fn := Chain(nil, func(_ string, s State) { seen = append(seen, s) })
	fn("job", StateReserved)
	assert.Equal(t, []State{StateReserved}, seen)
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.True(t, ShouldShowProgress(true))
}

func TestSubmitAllKeepsOrderAndConservesCredit(t *testing.T) {
	h := newHarness(t)
	accountID := fixtures.CreateTestAccount(t, h.store, 2)

	titles := []string{"first", "second", "third"}
	var reqs []Request
	for _, title := range titles {
		req := mp3Request(accountID)
		req.Title = title
		reqs = append(reqs, req)
	}
	outcomes := h.orchestrator().SubmitAll(context.Background(), reqs, 1)

	require.Len(t, outcomes, 3)
	states := map[State]int{}
	for i, out := range outcomes {
		states[out.State]++
		if out.Completed() {
			assert.Equal(t, titles[i], out.Title)
		}
	}
	assert.Equal(t, map[State]int{StateCompleted: 2, StateRefused: 1}, states)
	assert.Equal(t, 0, h.balance(t, accountID))
}
