package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cacheEntry holds the parse outcome for one config type. The outcome
// is computed once and remembered, errors included, so every caller of
// Load sees the same result for the lifetime of the process.
type cacheEntry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]*cacheEntry)

	dotenvOnce sync.Once
)

// Load parses environment variables into the given configuration struct
// based on `env` field tags. Each distinct struct type is parsed exactly
// once per process; later calls for the same type receive the cached
// copy, so packages can declare their own Config and call Load without
// coordinating.
//
// Before the first parse, the default .env file is loaded into the
// process environment if it exists.
//
// Example:
//
//	type Config struct {
//		ConnectionURL string `env:"PG_CONN_URL,required"`
//		MaxConns      int32  `env:"PG_MAX_CONNS" envDefault:"10"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	})

	entry := entryFor(typeNameOf[T]())
	entry.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			entry.err = errors.Join(ErrParsingConfig, err)
			return
		}
		entry.value = parsed
	})

	if entry.err != nil {
		return entry.err
	}
	*v = entry.value.(T)
	return nil
}

// MustLoad works like Load but panics when loading fails. Use it in
// main for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

func entryFor(typeName string) *cacheEntry {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	entry, ok := cache[typeName]
	if !ok {
		entry = &cacheEntry{}
		cache[typeName] = entry
	}
	return entry
}

// typeNameOf returns the cache key for the generic type T.
func typeNameOf[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
