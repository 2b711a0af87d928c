package core

import "sync"

// conversationLocks hands out one mutex per conversation id. Entries are
// dropped once no turn holds or waits for them.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*conversationLock)}
}

// lock blocks until the conversation is free and returns its unlock func
func (l *conversationLocks) lock(conversationID string) func() {
	l.mu.Lock()
	c, ok := l.locks[conversationID]
	if !ok {
		c = &conversationLock{}
		l.locks[conversationID] = c
	}
	c.refs++
	l.mu.Unlock()

	c.mu.Lock()
	return func() {
		c.mu.Unlock()

		l.mu.Lock()
		c.refs--
		if c.refs == 0 {
			delete(l.locks, conversationID)
		}
		l.mu.Unlock()
	}
}

func (l *conversationLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
