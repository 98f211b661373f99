package ledger

import "sync"

// accountLocks hands out one mutex per account so balance mutations for the
// same account run one at a time inside this process. The database
// statements are guarded on their own; this keeps contention off the
// storage layer. Entries live only while someone holds or waits on them.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: map[int64]*accountLock{}}
}

func (a *accountLocks) lock(accountID int64) func() {
	a.mu.Lock()
	m, ok := a.locks[accountID]
	if !ok {
		m = &accountLock{}
		a.locks[accountID] = m
	}
	m.refs++
	a.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		a.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(a.locks, accountID)
		}
		a.mu.Unlock()
	}
}

func (a *accountLocks) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
