package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

func TestEnvironmentPresets(t *testing.T) {
	t.Parallel()

	t.Run("development is text at debug level", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithDevelopment("tenantd"), logger.WithOutput(buf))

		log.Debug("resolving tenant")
		out := buf.String()
		assert.Contains(t, out, "DEBUG")
		assert.Contains(t, out, "service=tenantd")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production is json at info level", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithProduction("tenantd"), logger.WithOutput(buf))

		log.Debug("dropped")
		assert.Zero(t, buf.Len())

		log.Info("kept")
		entry := decode(t, buf)
		assert.Equal(t, "tenantd", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("staging mirrors production with its own env tag", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithStaging("tenantd"), logger.WithOutput(buf))

		log.Info("kept")
		entry := decode(t, buf)
		assert.Equal(t, "staging", entry["env"])
	})

	t.Run("empty service name leaves defaults alone", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithProduction(""), logger.WithOutput(buf))

		log.Info("kept")
		entry := decode(t, buf)
		_, ok := entry["service"]
		assert.False(t, ok)
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env     string
		wantEnv string
		json    bool
	}{
		{"production", "production", true},
		{"prod", "production", true},
		{"staging", "staging", true},
		{"stage", "staging", true},
		{"development", "development", false},
		{"local", "development", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "tenantd"), logger.WithOutput(buf))

			log.Info("msg")
			if tt.json {
				entry := decode(t, buf)
				assert.Equal(t, tt.wantEnv, entry["env"])
			} else {
				assert.Contains(t, buf.String(), "env="+tt.wantEnv)
			}
		})
	}
}

func TestContextInjection(t *testing.T) {
	t.Parallel()

	type tenantKey struct{}

	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(tenantKey{}).(string); ok {
			return slog.String("tenant_id", v), true
		}
		return slog.Attr{}, false
	}

	t.Run("extractor injects attributes", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(extractor))

		ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
		log.InfoContext(ctx, "bound schema")
		entry := decode(t, buf)
		assert.Equal(t, "acme", entry["tenant_id"])
	})

	t.Run("extractor stays silent without a value", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(extractor))

		log.InfoContext(context.Background(), "no tenant")
		entry := decode(t, buf)
		_, ok := entry["tenant_id"]
		assert.False(t, ok)
	})

	t.Run("nil extractors are filtered", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(nil, extractor))

		ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
		require.NotPanics(t, func() { log.InfoContext(ctx, "msg") })
		entry := decode(t, buf)
		assert.Equal(t, "acme", entry["tenant_id"])
	})

	t.Run("context value shortcut", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("schema", tenantKey{}))

		ctx := context.WithValue(context.Background(), tenantKey{}, "tenant_acme")
		log.InfoContext(ctx, "msg")
		entry := decode(t, buf)
		assert.Equal(t, "tenant_acme", entry["schema"])
	})
}
