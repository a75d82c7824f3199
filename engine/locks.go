package engine

import (
	"sync"
	"time"
)

// lockTable はイベント単位の排他ロック。
// フェーズ遷移や候補日上限はレコード横断の不変条件なので、
// 同一イベントへの書き込みは必ず直列化する
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

func (t *lockTable) get(eventID string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.locks[eventID]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[eventID] = ch
	}
	return ch
}

// acquire はイベントのロックを取得する。timeout 内に取得できなければ ErrBusy
func (t *lockTable) acquire(eventID string, timeout time.Duration) (func(), error) {
	ch := t.get(eventID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrBusy
	}
}
