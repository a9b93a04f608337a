package logger

import (
	"log/slog"
	"strconv"
)

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors under the key "errors", keyed by
// their position in the argument list. All-nil input yields an empty
// Attr.
func Errors(errs ...error) slog.Attr {
	attrs := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err == nil {
			continue
		}
		attrs = append(attrs, slog.Any(strconv.Itoa(i), err))
	}
	if len(attrs) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(attrs...)}
}

// Error records a single error under the key "error". A nil error
// yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
// A nil id yields an empty Attr.
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// TenantKey records the tenant key under the key "tenant_key".
func TenantKey(key string) slog.Attr {
	return slog.String("tenant_key", key)
}

// Schema records a database schema name under the key "schema".
func Schema(name string) slog.Attr {
	return slog.String("schema", name)
}

// RequestID records the request identifier under the key "request_id".
// A nil id yields an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// RetryCount records how many retries an operation took under the key
// "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records an elapsed time under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records which subsystem emitted the record under the key
// "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a lifecycle event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
