package room

import (
	"testing"

	"github.com/streamvault/server/internal/repository/room"
	"github.com/stretchr/testify/assert"
)

func TestEstimatePosition(t *testing.T) {
	tests := []struct {
		name   string
		player room.Player
		nowMs  int64
		want   float64
	}{
		{
			name:   "paused returns anchored position",
			player: room.Player{IsPlaying: false, CurrentTime: 42, PlaybackRate: 1.0, UpdatedAt: 1000},
			nowMs:  61000,
			want:   42,
		},
		{
			name:   "playing extrapolates from anchor",
			player: room.Player{IsPlaying: true, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 1000},
			nowMs:  11000,
			want:   110,
		},
		{
			name:   "playback rate scales the elapsed time",
			player: room.Player{IsPlaying: true, CurrentTime: 100, PlaybackRate: 1.5, UpdatedAt: 1000},
			nowMs:  11000,
			want:   115,
		},
		{
			name:   "clock skew never rewinds the position",
			player: room.Player{IsPlaying: true, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 20000},
			nowMs:  10000,
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, estimatePosition(tt.player, tt.nowMs), 0.0001)
		})
	}
}
