package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelops/internal/autocheckout"
	"hotelops/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type scriptedSweep struct {
	result autocheckout.Result
	err    error
	calls  int
}

func (s *scriptedSweep) Run(_ context.Context, _ time.Time) (autocheckout.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestSweep_ReturnsExitCodeInsteadOfExiting(t *testing.T) {
	tests := []struct {
		name  string
		sweep *scriptedSweep
		want  int
	}{
		{
			name:  "clean sweep",
			sweep: &scriptedSweep{result: autocheckout.Result{Bookings: 3, CheckOuts: 4}},
			want:  0,
		},
		{
			name:  "listing bookings failed",
			sweep: &scriptedSweep{err: errors.New("server selection timeout")},
			want:  1,
		},
		{
			name:  "some bookings failed",
			sweep: &scriptedSweep{result: autocheckout.Result{Bookings: 3, CheckOuts: 2, Failed: 1}},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := sweep(context.Background(), tt.sweep, time.Now(), logger.Discard())

			assert.Equal(t, tt.want, code)
			assert.Equal(t, 1, tt.sweep.calls)
		})
	}
}
