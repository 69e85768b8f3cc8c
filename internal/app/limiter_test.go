package app

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestChatLimiterIsolatesChats(t *testing.T) {
	l := NewChatLimiter()

	held := make(chan struct{})
	release := make(chan struct{})
	go l.Do(1, func() {
		close(held)
		<-release
	})
	<-held
	done := make(chan struct{})
	go func() {
		l.Do(2, func() {})
		close(done)
	}()
	<-done
	close(release)

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Do(1, func() { counter++ })
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Fatalf("counter = %d, want 100", counter)
	}
}
