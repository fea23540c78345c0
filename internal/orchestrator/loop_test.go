package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsInPostOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	l.Post(nil)

	if n := l.Drain(); n != 5 {
		t.Fatalf("expected 5 runs, got %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
}

func TestLoopDrainIncludesNestedPosts(t *testing.T) {
	l := NewLoop()
	var got []string
	l.Post(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	l.Post(func() { got = append(got, "second") })

	l.Drain()
	if len(got) != 3 || got[0] != "outer" || got[1] != "second" || got[2] != "inner" {
		t.Fatalf("unexpected order: %v", got)
	}
	if l.Pending() != 0 {
		t.Fatalf("queue not empty: %d", l.Pending())
	}
}

func TestLoopRunSerializesConcurrentPosts(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	const posters, each = 8, 50
	var (
		wg      sync.WaitGroup
		counter int
		ran     = make(chan struct{}, posters*each)
	)
	for p := 0; p < posters; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				l.Post(func() {
					counter++
					ran <- struct{}{}
				})
			}
		}()
	}
	wg.Wait()

	timeout := time.After(5 * time.Second)
	for i := 0; i < posters*each; i++ {
		select {
		case <-ran:
		case <-timeout:
			t.Fatalf("only %d of %d functions ran", i, posters*each)
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if counter != posters*each {
		t.Fatalf("counter=%d want %d", counter, posters*each)
	}
}
