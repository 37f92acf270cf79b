package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// leak guard for rooms whose process died mid-session, live rooms are
	// destroyed explicitly when the last participant leaves
	roomExpireDuration    = 24 * time.Hour
	sessionExpireDuration = 10 * time.Minute
)

type repo struct {
	rc             *redis.Client
	logger         *slog.Logger
	maxScoreScript string
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
		// join order doubles as tenure, the lowest score is the
		// longest-tenured participant
		maxScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
	}
}
