package services

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/conneroisu/stegtext/internal/wordlist"
	"go.uber.org/multierr"
)

// Runner is the HTTP server driven by ServeService.
type Runner interface {
	// Start blocks until ctx is done or the server fails.
	Start(ctx context.Context) error
	Addr() string
}

// ServeService handles server lifecycle business logic
type ServeService struct {
	config  *config.Config
	store   *wordlist.Store
	runner  Runner
	logger  logging.Logger
	signals []os.Signal
}

// NewServeService creates a new serve service. store may be nil when the
// built-in word lists are used.
func NewServeService(cfg *config.Config, store *wordlist.Store, runner Runner, logger logging.Logger) *ServeService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ServeService{
		config:  cfg,
		store:   store,
		runner:  runner,
		logger:  logger.WithComponent("serve"),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// ServeResult contains the result of a serve operation
type ServeResult struct {
	ServerURL string
	Watching  bool
}

// Serve runs the server until ctx is done or SIGINT/SIGTERM arrives. When
// configured it also reloads the word lists as their files change.
func (s *ServeService) Serve(ctx context.Context) (*ServeResult, error) {
	result := &ServeResult{ServerURL: "http://" + s.runner.Addr()}

	ctx, stop := signal.NotifyContext(ctx, s.signals...)
	defer stop()

	stopWatcher := func() error { return nil }
	if s.config.WordLists.Watch && s.store != nil {
		fw, err := s.store.Watch(ctx, wordlist.DefaultDebounce)
		if err != nil {
			return result, errors.WrapIO(err, errors.ErrCodeInternalError, "failed to watch word lists")
		}
		if fw != nil {
			result.Watching = true
			stopWatcher = fw.Stop
		}
	}

	s.logger.Info(ctx, "Starting server", "url", result.ServerURL, "watch_wordlists", result.Watching)

	err := s.runner.Start(ctx)
	err = multierr.Append(err, stopWatcher())
	if err != nil {
		se := errors.WrapIO(err, errors.ErrCodeInternalError, "server stopped with an error")
		if strings.Contains(err.Error(), "address already in use") {
			se = se.WithContext("hint", "another process holds the port; pick one with --port")
		}
		return result, se
	}

	s.logger.Info(context.Background(), "Server stopped")
	return result, nil
}

// GetServerInfo returns information about the server configuration
func (s *ServeService) GetServerInfo() *ServerInfo {
	info := &ServerInfo{
		Host:      s.config.Server.Host,
		Port:      s.config.Server.Port,
		ServerURL: "http://" + s.config.Server.Addr(),
	}
	if s.store != nil {
		info.ShortWords, info.LongWords = s.store.Paths()
	}
	return info
}

// ServerInfo contains information about the server configuration
type ServerInfo struct {
	Host       string
	Port       int
	ServerURL  string
	ShortWords string
	LongWords  string
}
