package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the given .env files into the
// process environment. With no arguments it loads the default .env from
// the working directory. Later files take precedence over earlier ones
// and over variables already present in the environment.
func LoadEnv(filenames ...string) error {
	if err := godotenv.Overload(filenames...); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure. Use it for env
// files the application cannot start without.
func MustLoadEnv(filenames ...string) {
	if err := LoadEnv(filenames...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache clears all cached configuration values so the next Load
// parses the environment again. Intended for tests.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = make(map[string]*cacheEntry)
}

// ForceReloadConfig drops the cached value for v's type and loads it
// again from the current environment. Use it after the environment
// changed, for example between tests.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	cacheMu.Lock()
	delete(cache, typeNameOf[T]())
	cacheMu.Unlock()

	return Load(v)
}
