package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/htmltext"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
)

// DefaultMaxFileBytes caps how much of one file Scan reads.
const DefaultMaxFileBytes = 10 << 20

// DefaultScanExtensions are the file types picked up when walking directories.
var DefaultScanExtensions = []string{".txt", ".md", ".html", ".htm"}

// ScanService runs the detector over many files concurrently.
type ScanService struct {
	stego  *StegoService
	logger logging.Logger
}

// NewScanService creates a new scan service
func NewScanService(stego *StegoService, logger logging.Logger) *ScanService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ScanService{stego: stego, logger: logger.WithComponent("scan")}
}

// ScanOptions contains options for the scan process
type ScanOptions struct {
	// Paths are files or directories. Files named directly are always
	// scanned; directories contribute files matching Extensions.
	Paths        []string
	Extensions   []string
	Workers      int
	MaxFileBytes int64
}

// FileReport is the verdict for one file.
type FileReport struct {
	Path      string              `json:"path" yaml:"path"`
	Detection *analyzer.Detection `json:"detection,omitempty" yaml:"detection,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// ScanResult contains the result of a scan operation
type ScanResult struct {
	Duration time.Duration `json:"duration" yaml:"duration"`
	Files    []FileReport  `json:"files" yaml:"files"`
	Flagged  int           `json:"flagged" yaml:"flagged"`
	Failed   int           `json:"failed" yaml:"failed"`
}

// Scan analyses every file reachable from opts.Paths. Unreadable files are
// reported per file; paths that cannot be walked at all are returned as a
// combined error next to the partial result.
func (s *ScanService) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	startTime := time.Now()
	opts = opts.withDefaults()

	files, walkErr := collectFiles(opts.Paths, opts.Extensions)

	p := pool.NewWithResults[FileReport]().WithContext(ctx).WithMaxGoroutines(opts.Workers)
	for _, path := range files {
		p.Go(func(ctx context.Context) (FileReport, error) {
			if err := ctx.Err(); err != nil {
				return FileReport{}, err
			}
			return s.scanFile(path, opts.MaxFileBytes), nil
		})
	}
	reports, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	result := &ScanResult{Files: reports}
	for _, r := range reports {
		switch {
		case r.Error != "":
			result.Failed++
		case r.Detection.Detected:
			result.Flagged++
		}
	}
	result.Duration = time.Since(startTime)

	s.logger.Info(ctx, "Scan finished",
		"files", len(reports),
		"flagged", result.Flagged,
		"failed", result.Failed,
		"duration", result.Duration)

	if walkErr != nil {
		return result, errors.WrapIO(walkErr, errors.ErrCodeFileNotFound, "some paths could not be scanned")
	}
	return result, nil
}

func (o ScanOptions) withDefaults() ScanOptions {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultScanExtensions
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = DefaultMaxFileBytes
	}
	return o
}

// collectFiles expands the roots into a deduplicated file list. Hidden
// directories below a root are skipped.
func collectFiles(roots, extensions []string) ([]string, error) {
	var files []string
	var errs error
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, extensions) {
				add(path)
			}
			return nil
		})
		errs = multierr.Append(errs, err)
	}
	return files, errs
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (s *ScanService) scanFile(path string, maxBytes int64) FileReport {
	report := FileReport{Path: path}

	text, err := readText(path, maxBytes)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	detection := s.stego.Detect(text)
	report.Detection = &detection
	return report
}

// readText loads a file as text, reducing HTML to its visible text.
func readText(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("file is larger than %d bytes", maxBytes)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not UTF-8 text")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return htmltext.VisibleText(bytes.NewReader(data))
	}
	return string(data), nil
}
