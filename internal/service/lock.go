package service

import (
	"fmt"
	"sync"

	"github.com/openclock/attendance-service/internal/model"
)

// keyedMutex serializes check-in writes per (user, pairing group).
// Requests for different users, or for different groups of the same
// user, proceed independently. The map grows with the number of
// distinct keys, which is bounded by two entries per user.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex for one (user, group) key, creating it
// on first use.
func (k *keyedMutex) lockFor(userID uint64, group model.PairingGroup) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", userID, group)
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
