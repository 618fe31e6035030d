package orders

import (
	"sync"

	"github.com/comanda-pos/backend/pkg/db/models"
)

// Inflight coalesces concurrent identical add-item requests. The first
// caller for a key runs fn; callers that arrive while it is still running
// block and share its result instead of re-executing.
type Inflight struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

type inflightCall struct {
	done  chan struct{}
	order *models.Order
	err   error
}

// NewInflight builds an empty dedup map.
func NewInflight() *Inflight {
	return &Inflight{calls: make(map[string]*inflightCall)}
}

// Do executes fn under key, or waits for the in-progress execution of the
// same key and returns its result. The key is deleted before the result is
// published, so a request arriving after completion runs fresh.
func (f *Inflight) Do(key string, fn func() (*models.Order, error)) (*models.Order, error) {
	f.mu.Lock()
	if existing, ok := f.calls[key]; ok {
		f.mu.Unlock()
		<-existing.done
		return existing.order, existing.err
	}

	call := &inflightCall{done: make(chan struct{})}
	f.calls[key] = call
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.calls, key)
		f.mu.Unlock()
		close(call.done)
	}()

	call.order, call.err = fn()
	return call.order, call.err
}
