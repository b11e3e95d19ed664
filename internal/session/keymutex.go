package session

import "sync"

// KeyedMutex serializes read-modify-write sequences per chat. Telegram
// updates and payment webhooks arrive on different goroutines and may
// race on the same session without it.
type KeyedMutex struct {
	locks sync.Map // chatID -> *sync.Mutex
}

func (k *KeyedMutex) Lock(chatID int64) {
	m, _ := k.locks.LoadOrStore(chatID, &sync.Mutex{})
	m.(*sync.Mutex).Lock()
}

func (k *KeyedMutex) Unlock(chatID int64) {
	m, ok := k.locks.Load(chatID)
	if !ok {
		return
	}
	m.(*sync.Mutex).Unlock()
}
