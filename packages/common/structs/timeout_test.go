package structs

import (
	"context"
	"testing"
	"time"

	Error "entiq/packages/common/errors"
)

func TestSetTimeout(t *testing.T) {
	t.Run("completes before timeout", func(t *testing.T) {
		executed := false

		err := SetTimeout(context.Background(), 100*time.Millisecond, func(ctx context.Context) {
			time.Sleep(10 * time.Millisecond)
			executed = true
		})

		if err != nil {
			t.Errorf("SetTimeout should succeed: %v", err)
		}
		if !executed {
			t.Error("Function should have been executed")
		}
	})

	t.Run("reports timeout as StatusTimeout", func(t *testing.T) {
		err := SetTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) {
			time.Sleep(100 * time.Millisecond)
		})

		if err != Error.StatusTimeout {
			t.Errorf("SetTimeout should return StatusTimeout, got %v", err)
		}
	})

	t.Run("zero timeout disables the deadline", func(t *testing.T) {
		executed := false

		err := SetTimeout(context.Background(), 0, func(ctx context.Context) {
			executed = true
		})

		if err != nil {
			t.Errorf("SetTimeout with zero timeout should succeed: %v", err)
		}
		if !executed {
			t.Error("Function should have been executed")
		}
	})

	t.Run("respects caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		err := SetTimeout(ctx, time.Second, func(ctx context.Context) {
			<-ctx.Done()
		})

		if err == nil {
			t.Error("SetTimeout should return context cancellation error")
		}
	})
}
