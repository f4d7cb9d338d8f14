package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterruptOnDone(t *testing.T) {
	tests := []struct {
		name        string
		cancel      bool
		pollingDone bool
		interrupted bool
	}{
		{"stopped while polling", true, false, true},
		{"polling ended by key", false, true, false},
		{"polling ended before stop", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			polling := make(chan struct{})
			if tt.pollingDone {
				close(polling)
			}
			if tt.cancel {
				cancel()
			}

			interrupted := false
			finished := make(chan struct{})

			go func() {
				interruptOnDone(ctx, polling, func() { interrupted = true })
				close(finished)
			}()

			select {
			case <-finished:
			case <-time.After(time.Second):
				t.Fatal("interruptOnDone did not return")
			}

			assert.Equal(t, tt.interrupted, interrupted)
		})
	}
}
