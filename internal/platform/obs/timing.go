package obs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Logger returns a log entry tagged with the request id carried by ctx.
func Logger(ctx context.Context) *log.Entry {
	return log.WithField("req_id", RequestID(ctx))
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	entry := Logger(ctx).WithField("op", name)

	return func(errp *error) {
		dur := time.Since(start)
		entry := entry.WithField("dur_ms", dur.Milliseconds())

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		entry.Info("operation completed")
	}
}
