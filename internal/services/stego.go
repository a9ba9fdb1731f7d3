// Package services ties the codecs, the encryptor and the analyzer together
// behind the operations the CLI and HTTP server expose.
package services

import (
	"context"
	"encoding/base32"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/crypto"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/homoglyph"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/conneroisu/stegtext/internal/morse"
	"github.com/conneroisu/stegtext/internal/zerowidth"
	"golang.org/x/text/unicode/norm"
)

// armour carries sealed bytes through the morse channel, which only keeps
// upper-case letters and digits.
var armour = base32.StdEncoding.WithPadding(base32.NoPadding)

// WordListSource supplies the current morse vocabulary.
type WordListSource interface {
	WordLists() *morse.WordLists
}

// StaticWords is a WordListSource that never changes.
type StaticWords struct {
	Words *morse.WordLists
}

// WordLists implements WordListSource.
func (s StaticWords) WordLists() *morse.WordLists {
	if s.Words == nil {
		return morse.DefaultWordLists()
	}
	return s.Words
}

// Options configures a StegoService. Zero fields take defaults.
type Options struct {
	Words     WordListSource
	Encryptor *crypto.Encryptor
	Glyphs    *homoglyph.Table
	Detector  *analyzer.Detector
	Logger    logging.Logger
	// MorseOptions are passed to every morse codec the service builds.
	MorseOptions []morse.Option
}

// StegoService hides and extracts secrets and analyses suspect text.
type StegoService struct {
	words     WordListSource
	encryptor *crypto.Encryptor
	zerowidth *zerowidth.Codec
	homoglyph *homoglyph.Codec
	detector  *analyzer.Detector
	logger    logging.Logger
	morseOpts []morse.Option

	mu         sync.Mutex
	morseCodec *morse.Codec
}

// NewStegoService creates a new service
func NewStegoService(opts Options) *StegoService {
	if opts.Words == nil {
		opts.Words = StaticWords{Words: morse.DefaultWordLists()}
	}
	if opts.Encryptor == nil {
		opts.Encryptor = crypto.Default()
	}
	if opts.Detector == nil {
		opts.Detector = analyzer.NewDetector(analyzer.DefaultThresholds())
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &StegoService{
		words:     opts.Words,
		encryptor: opts.Encryptor,
		zerowidth: zerowidth.New(),
		homoglyph: homoglyph.New(opts.Glyphs),
		detector:  opts.Detector,
		logger:    opts.Logger.WithComponent("stego"),
		morseOpts: opts.MorseOptions,
	}
}

// NewStegoServiceFromConfig wires the encryptor and detector settings of cfg.
// A nil words source keeps the built-in vocabulary.
func NewStegoServiceFromConfig(cfg *config.Config, words WordListSource, logger logging.Logger) *StegoService {
	return NewStegoService(Options{
		Words:     words,
		Encryptor: crypto.New(cfg.CryptoOptions()),
		Detector:  analyzer.NewDetector(cfg.Thresholds()),
		Logger:    logger,
	})
}

// HideRequest is the input to Hide.
type HideRequest struct {
	Method   Method `json:"method"`
	Cover    string `json:"cover,omitempty"`
	Secret   string `json:"secret"`
	Password string `json:"password,omitempty"`

	// NormalizeCover composes the cover to NFC before a homoglyph embed so
	// that decomposed letters become carriers. The returned text is then the
	// normalised cover. Ignored by the other methods, which never alter the
	// cover.
	NormalizeCover bool `json:"normalize_cover,omitempty"`
}

// ExtractRequest is the input to Extract.
type ExtractRequest struct {
	Method   Method `json:"method"`
	Text     string `json:"text"`
	Password string `json:"password,omitempty"`
}

// Capacity describes how much a cover can carry.
type Capacity struct {
	Method    Method `json:"method"`
	Bits      int    `json:"bits"`
	Bytes     int    `json:"bytes"`
	Unbounded bool   `json:"unbounded"`
}

// Hide embeds req.Secret, encrypted first when a password is given.
func (s *StegoService) Hide(ctx context.Context, req HideRequest) (string, error) {
	perf := logging.StartOperation(s.logger, "hide")
	out, err := s.hide(ctx, req)
	if err != nil {
		perf.EndWithError(ctx, err)
		return "", err
	}
	perf.End(ctx,
		"method", req.Method.String(),
		"secret_bytes", len(req.Secret),
		"encrypted", req.Password != "",
		"stego_runes", utf8.RuneCountInString(out),
	)
	return out, nil
}

func (s *StegoService) hide(ctx context.Context, req HideRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Secret == "" {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyPayload, "secret message is empty").WithMethod(req.Method.String())
	}

	cover := req.Cover
	if req.NormalizeCover && req.Method == MethodHomoglyph {
		cover = norm.NFC.String(cover)
	}

	switch req.Method {
	case MethodZeroWidth, MethodHomoglyph:
		payload := []byte(req.Secret)
		if req.Password != "" {
			ct, err := s.encryptor.Encrypt(req.Secret, req.Password)
			if err != nil {
				return "", err
			}
			payload = []byte(ct)
		}
		if req.Method == MethodZeroWidth {
			return s.zerowidth.Hide(cover, payload)
		}
		return s.homoglyph.Hide(cover, payload)

	case MethodMorse:
		payload := []byte(req.Secret)
		if req.Password != "" {
			sealed, err := s.encryptor.Seal(payload, req.Password)
			if err != nil {
				return "", err
			}
			payload = []byte(armour.EncodeToString(sealed))
		}
		return s.morse().Hide(payload)
	}
	return "", unknownMethod(req.Method)
}

// Extract recovers the secret hidden in req.Text.
func (s *StegoService) Extract(ctx context.Context, req ExtractRequest) (string, error) {
	perf := logging.StartOperation(s.logger, "extract")
	out, err := s.extract(ctx, req)
	if err != nil {
		perf.EndWithError(ctx, err)
		return "", err
	}
	perf.End(ctx,
		"method", req.Method.String(),
		"text_runes", utf8.RuneCountInString(req.Text),
		"encrypted", req.Password != "",
		"secret_bytes", len(out),
	)
	return out, nil
}

func (s *StegoService) extract(ctx context.Context, req ExtractRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var payload []byte
	var err error
	switch req.Method {
	case MethodZeroWidth:
		payload, err = s.zerowidth.Extract(req.Text)
	case MethodHomoglyph:
		payload, err = s.homoglyph.Extract(req.Text)
	case MethodMorse:
		payload, err = s.morse().Extract(req.Text)
	default:
		err = unknownMethod(req.Method)
	}
	if err != nil {
		return "", err
	}

	if req.Password == "" {
		return string(payload), nil
	}
	if req.Method == MethodMorse {
		sealed, err := armour.DecodeString(strings.TrimSpace(string(payload)))
		if err != nil {
			return "", errors.NewAuthenticationError(err).WithMethod(req.Method.String())
		}
		plain, err := s.encryptor.Open(sealed, req.Password)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}
	return s.encryptor.Decrypt(string(payload), req.Password)
}

// Capacity reports how many bits cover can carry with method. The cover is
// measured as given, without normalisation.
func (s *StegoService) Capacity(method Method, cover string) (Capacity, error) {
	switch method {
	case MethodZeroWidth, MethodMorse:
		return Capacity{Method: method, Unbounded: true}, nil
	case MethodHomoglyph:
		bits := s.homoglyph.Capacity(cover)
		return Capacity{Method: method, Bits: bits, Bytes: bits / 8}, nil
	}
	return Capacity{}, unknownMethod(method)
}

// Detect scores text for signs of hidden content.
func (s *StegoService) Detect(text string) analyzer.Detection {
	return s.detector.Detect(text)
}

// Compare reports how stego differs from original.
func (s *StegoService) Compare(original, stego string) analyzer.Comparison {
	return s.detector.Compare(original, stego, s.homoglyph.Table())
}

// WordLists returns the morse vocabulary in use.
func (s *StegoService) WordLists() *morse.WordLists {
	return s.words.WordLists()
}

// morse returns a codec over the current vocabulary snapshot, rebuilding it
// when the source has swapped in new lists.
func (s *StegoService) morse() *morse.Codec {
	words := s.words.WordLists()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.morseCodec == nil || s.morseCodec.WordLists() != words {
		s.morseCodec = morse.New(words, s.morseOpts...)
	}
	return s.morseCodec
}

func unknownMethod(m Method) error {
	return errors.NewInvalidInputError(errors.ErrCodeUnknownMethod,
		"unknown method "+strconv.Quote(m.String())+" (want zerowidth, morse or homoglyph)")
}
