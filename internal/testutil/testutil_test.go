package testutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}

	clock.Advance(time.Second)
	if !clock.Now().Equal(start.Add(time.Second)) {
		t.Errorf("after Advance, Now() = %v, want %v", clock.Now(), start.Add(time.Second))
	}

	target := start.Add(time.Hour)
	clock.Set(target)
	if !clock.Now().Equal(target) {
		t.Errorf("after Set, Now() = %v, want %v", clock.Now(), target)
	}
}

func TestMockClock_ZeroStart(t *testing.T) {
	before := time.Now()
	clock := NewMockClock(time.Time{})
	if clock.Now().Before(before) {
		t.Error("zero start should default to current time")
	}
}

func TestMockOperation_Success(t *testing.T) {
	op := NewMockOperation()

	AssertNoError(t, op.Run(context.Background()))
	AssertNoError(t, op.Run(context.Background()))
	AssertEqual(t, op.Calls(), 2)
}

func TestMockOperation_Error(t *testing.T) {
	op := NewMockOperation()
	wantErr := errors.New("boom")
	op.SetError(wantErr)

	if err := op.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Run() = %v, want %v", err, wantErr)
	}
	AssertEqual(t, op.Calls(), 1)
}

func TestMockOperation_Panic(t *testing.T) {
	op := NewMockOperation()
	op.SetPanic("kaboom")

	defer func() {
		if r := recover(); r != "kaboom" {
			t.Errorf("recovered %v, want kaboom", r)
		}
	}()
	_ = op.Run(context.Background())
}

func TestMockOperation_Blocking(t *testing.T) {
	op := NewMockOperation()
	op.SetBlocking()

	done := make(chan error, 1)
	go func() {
		done <- op.Run(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("blocking operation should not complete before Release")
	case <-time.After(20 * time.Millisecond):
	}

	op.Release()
	select {
	case err := <-done:
		AssertNoError(t, err)
	case <-time.After(TestTimeout):
		t.Fatal("operation did not complete after Release")
	}

	// Release is idempotent.
	op.Release()
}

func TestMockOperation_BlockingCanceled(t *testing.T) {
	op := NewMockOperation()
	op.SetBlocking()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := op.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
