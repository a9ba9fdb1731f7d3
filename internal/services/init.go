package services

import (
	"os"
	"path/filepath"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/morse"
	"github.com/conneroisu/stegtext/internal/wordlist"
)

// Names of the files InitProject creates.
const (
	ConfigFileName = ".stegtext.yml"
	WordListDir    = "wordlists"
	ShortWordsFile = "short.txt"
	LongWordsFile  = "long.txt"
)

// InitService handles project initialization business logic
type InitService struct{}

// NewInitService creates a new initialization service
func NewInitService() *InitService {
	return &InitService{}
}

// InitOptions contains options for project initialization
type InitOptions struct {
	ProjectDir string
	// Config is written as is; nil means the defaults.
	Config *config.Config
	// WordLists exports the built-in vocabularies as editable files and
	// points the configuration at them.
	WordLists bool
	Force     bool
}

// InitResult lists the files InitProject wrote.
type InitResult struct {
	ConfigPath string
	WordLists  []string
}

// InitProject writes a configuration file, and optionally the default word
// lists, into opts.ProjectDir. Existing files are kept unless opts.Force.
func (s *InitService) InitProject(opts InitOptions) (*InitResult, error) {
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if err := os.MkdirAll(opts.ProjectDir, 0o755); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInternalError, "cannot create project directory").
			WithContext("path", opts.ProjectDir)
	}

	cfg := config.Default()
	if opts.Config != nil {
		copied := *opts.Config
		cfg = &copied
	}

	result := &InitResult{ConfigPath: filepath.Join(opts.ProjectDir, ConfigFileName)}

	if opts.WordLists {
		files, err := s.writeWordLists(opts.ProjectDir, opts.Force)
		if err != nil {
			return nil, err
		}
		result.WordLists = files
		cfg.WordLists.ShortFile = filepath.Join(WordListDir, ShortWordsFile)
		cfg.WordLists.LongFile = filepath.Join(WordListDir, LongWordsFile)
	}

	if err := config.WriteConfigFile(result.ConfigPath, cfg, opts.Force); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *InitService) writeWordLists(projectDir string, force bool) ([]string, error) {
	dir := filepath.Join(projectDir, WordListDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInternalError, "cannot create word list directory").
			WithContext("path", dir)
	}

	defaults := morse.DefaultWordLists()
	lists := []struct {
		name  string
		words []string
	}{
		{ShortWordsFile, defaults.Short()},
		{LongWordsFile, defaults.Long()},
	}

	var written []string
	for _, l := range lists {
		path := filepath.Join(dir, l.name)
		if _, err := os.Stat(path); err == nil && !force {
			return nil, errors.NewInvalidInputError(errors.ErrCodeWordListInvalid, "word list already exists").
				WithContext("path", path)
		}
		if err := wordlist.WriteFile(path, l.words); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
