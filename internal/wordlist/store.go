package wordlist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/conneroisu/stegtext/internal/morse"
	"github.com/conneroisu/stegtext/internal/watcher"
)

// DefaultDebounce is how long the store waits for a burst of file events to
// settle before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Store holds the active word lists. Readers get an immutable snapshot, so a
// reload never changes the vocabulary under a call already in progress.
type Store struct {
	shortPath string
	longPath  string
	logger    logging.Logger
	current   atomic.Pointer[morse.WordLists]
}

// NewStore loads the lists at shortPath and longPath. Empty paths use the
// built-in lists.
func NewStore(shortPath, longPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{
		shortPath: shortPath,
		longPath:  longPath,
		logger:    logger.WithComponent("wordlist"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// WordLists returns the current snapshot.
func (s *Store) WordLists() *morse.WordLists {
	return s.current.Load()
}

// Paths returns the configured short and long list files.
func (s *Store) Paths() (short, long string) {
	return s.shortPath, s.longPath
}

// Reload reads both files again and swaps them in. On error the previous
// lists stay active. Reloading unchanged files is a no-op for readers.
func (s *Store) Reload() error {
	words, err := Load(s.shortPath, s.longPath)
	if err != nil {
		return err
	}
	s.current.Store(words)
	return nil
}

// Watch reloads the store whenever one of its files changes, until ctx is
// done. It returns nil, nil when the store only uses built-in lists.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) (*watcher.FileWatcher, error) {
	var paths []string
	for _, p := range []string{s.shortPath, s.longPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := watcher.NewFileWatcher(debounce, s.logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.PathFilter(paths...))
	fw.AddFilter(watcher.NoEditorTempFilter)
	for _, p := range paths {
		if err := fw.AddPath(p); err != nil {
			fw.Stop()
			return nil, err
		}
	}

	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		if err := s.Reload(); err != nil {
			return err
		}
		words := s.WordLists()
		s.logger.Info(ctx, "Word lists reloaded",
			"short", len(words.Short()), "long", len(words.Long()), "events", len(events))
		return nil
	})

	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}
