package requestid

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a context extractor that surfaces the request ID
// as a "request_id" log attribute. Wire it into the logger with
// logger.WithContextExtractors so tenant resolution and schema routing
// logs correlate with the request that triggered them.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		requestID := FromContext(ctx)
		if requestID == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", requestID), true
	}
}
