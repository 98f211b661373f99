package pipeline

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// stageOrder gives the bar position reached by each state
var stageOrder = map[State]int64{
	StateReserved:     1,
	StateNormalizing:  2,
	StateTranscribing: 3,
	StateSummarizing:  4,
	StatePersisting:   5,
	StateCompleted:    6,
}

const stageCount = 6

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager draws one bar per job on a terminal. A disabled manager
// hands out no-op trackers.
type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithAutoRefresh(),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

// Track adds a bar labelled description and returns the ProgressFunc that
// moves it. The bar aborts when the job ends in any state but completed.
func (pm *ProgressManager) Track(description string) ProgressFunc {
	if !pm.enabled || pm.container == nil {
		return nil
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	var (
		mu    sync.Mutex
		state = StateIdle
	)
	bar := pm.container.AddBar(stageCount,
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.Any(func(decor.Statistics) string {
				mu.Lock()
				defer mu.Unlock()
				return string(state)
			}, decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " ✓ "),
		),
	)

	return func(jobID string, next State) {
		mu.Lock()
		state = next
		mu.Unlock()

		if pos, ok := stageOrder[next]; ok {
			bar.SetCurrent(pos)
			return
		}
		if next.Terminal() {
			bar.Abort(false)
		}
	}
}

func (pm *ProgressManager) Wait() {
	if pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

func (pm *ProgressManager) Shutdown() {
	if pm.enabled && pm.container != nil {
		pm.container.Shutdown()
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}

// Chain calls each non-nil ProgressFunc in order
func Chain(fns ...ProgressFunc) ProgressFunc {
	var active []ProgressFunc
	for _, fn := range fns {
		if fn != nil {
			active = append(active, fn)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(jobID string, state State) {
		for _, fn := range active {
			fn(jobID, state)
		}
	}
}
