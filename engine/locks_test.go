package engine

import (
	"errors"
	"testing"
	"time"
)

func TestLockTableAcquireRelease(t *testing.T) {
	locks := newLockTable()

	release, err := locks.acquire("event-1", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// 保持中は取れない
	if _, err := locks.acquire("event-1", 20*time.Millisecond); !errors.Is(err, ErrBusy) {
		t.Errorf("second acquire = %v, want ErrBusy", err)
	}

	// 別イベントのロックには影響しない
	release2, err := locks.acquire("event-2", 20*time.Millisecond)
	if err != nil {
		t.Errorf("acquire other event: %v", err)
	} else {
		release2()
	}

	release()

	// 解放後は再取得できる
	release3, err := locks.acquire("event-1", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	release3()
}
