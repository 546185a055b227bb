package repositories

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the Badger database and the repositories built on it.
type Store struct {
	db       *badger.DB
	Users    *BadgerUserRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
	Likes    *BadgerLikeRepository
}

// Open opens the database at path. An empty path opens an in-memory
// database, which tests use for isolation.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(newBadgerLogger(logger)).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already open database.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewBadgerUserRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Likes:    NewBadgerLikeRepository(db),
	}
}

// DB exposes the underlying database for backup and restore.
func (s *Store) DB() *badger.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// badgerLogger routes badger's printf style logging into slog.
type badgerLogger struct {
	l *slog.Logger
}

func newBadgerLogger(l *slog.Logger) badger.Logger {
	if l == nil {
		return nil
	}
	return &badgerLogger{l: l.With("component", "badger")}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(trimf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(trimf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(trimf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(trimf(format, args...))
}

func trimf(format string, args ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
