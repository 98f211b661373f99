package pipeline

import (
	"context"
	"sync"
)

// SubmitAll runs reqs with at most parallel jobs at a time and returns the
// outcomes in request order. Each job reserves its own credit, so a batch
// larger than the balance ends with the surplus jobs refused.
func (o *Orchestrator) SubmitAll(ctx context.Context, reqs []Request, parallel int) []*Outcome {
	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]*Outcome, len(reqs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)

	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			outcomes[i] = o.Submit(ctx, reqs[i])
			<-sem
		}(i)
	}
	wg.Wait()
	return outcomes
}
