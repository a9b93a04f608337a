package schema

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

const advisoryLockPrefix = "tenantkit:schema:"

// lockID derives a deterministic 64-bit advisory lock key for a schema
// name. Every instance computes the same key, which is what makes the
// lock effective across processes.
func lockID(schemaName string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(advisoryLockPrefix))
	_, _ = h.Write([]byte(schemaName))
	return int64(h.Sum64())
}

// withSchemaLock serializes fn per schema name, first in-process with a
// keyed mutex, then across instances with a PostgreSQL advisory lock.
// The advisory lock is session-scoped, so it is taken and released on
// one dedicated connection held for the duration of fn.
func (m *Manager) withSchemaLock(ctx context.Context, schemaName string, fn func(context.Context) error) error {
	unlock := m.locks.lock(schemaName)
	defer unlock()

	conn, err := m.db.AcquireLockConn(ctx)
	if err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	defer conn.Release()

	id := lockID(schemaName)
	lctx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	var got bool
	if err := conn.QueryRow(lctx, "SELECT pg_try_advisory_lock($1)", id).Scan(&got); err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	if !got {
		m.log.InfoContext(ctx, "schema lock held elsewhere, waiting",
			"schema", schemaName, "lock_id", id)
		if _, err := conn.Exec(lctx, "SELECT pg_advisory_lock($1)", id); err != nil {
			return errors.Join(ErrLockFailed, err)
		}
	}
	defer func() {
		// The unlock must run on the same session even when ctx is done.
		if _, err := conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", id); err != nil {
			m.log.ErrorContext(ctx, "failed to release schema lock",
				"schema", schemaName, "lock_id", id, "error", err)
		}
	}()

	return fn(ctx)
}

// keyedMutex hands out one mutex per key and garbage-collects entries
// nobody is waiting on.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*lockEntry)}
}

// lock blocks until the per-key mutex is held and returns the matching
// unlock function.
func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
