package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/conneroisu/stegtext/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHideExtractHandlers(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		method   string
		secret   string
		password string
		want     string
		resolved services.Method
	}{
		{"zerowidth", "zerowidth", "meet at dawn", "", "meet at dawn", services.MethodZeroWidth},
		{"zerowidth alias encrypted", "zw", "meet at dawn", "pw", "meet at dawn", services.MethodZeroWidth},
		{"homoglyph", "unicode", "HI", "", "HI", services.MethodHomoglyph},
		{"morse alias", "lexical", "sos", "", "SOS", services.MethodMorse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/hide", map[string]string{
				"method":   tt.method,
				"cover":    prose,
				"secret":   tt.secret,
				"password": tt.password,
			}, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var hidden HideResponse
			decodeBody(t, rec, &hidden)
			assert.Equal(t, tt.resolved, hidden.Method)
			assert.NotEmpty(t, hidden.Text)

			rec = do(t, s, http.MethodPost, "/api/extract", map[string]string{
				"method":   tt.method,
				"text":     hidden.Text,
				"password": tt.password,
			}, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var extracted ExtractResponse
			decodeBody(t, rec, &extracted)
			assert.Equal(t, tt.want, extracted.Secret)
			assert.Empty(t, extracted.SecretBase64)
		})
	}
}

func TestExtractHandlerBinarySecret(t *testing.T) {
	s := newTestServer(t, nil)
	text := "a\u200c" + strings.Repeat("\u200d", 8) + "\u200cbc"

	rec := do(t, s, http.MethodPost, "/api/extract", map[string]string{
		"method": "zerowidth",
		"text":   text,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var extracted ExtractResponse
	decodeBody(t, rec, &extracted)
	assert.Equal(t, "\ufffd", extracted.Secret)
	assert.Equal(t, "/w==", extracted.SecretBase64)
}

func TestHandlerErrors(t *testing.T) {
	s := newTestServer(t, nil)

	zw := do(t, s, http.MethodPost, "/api/hide", map[string]string{
		"method": "zerowidth", "cover": prose, "secret": "x", "password": "right",
	}, nil)
	require.Equal(t, http.StatusOK, zw.Code)
	var hidden HideResponse
	decodeBody(t, zw, &hidden)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		typ    string
		code   string
	}{
		{
			name:   "unknown method",
			path:   "/api/hide",
			body:   map[string]string{"method": "lsb", "cover": prose, "secret": "x"},
			status: http.StatusBadRequest,
			typ:    "invalid_input",
			code:   "ERR_UNKNOWN_METHOD",
		},
		{
			name:   "missing cover",
			path:   "/api/hide",
			body:   map[string]string{"method": "zerowidth", "secret": "x"},
			status: http.StatusBadRequest,
			typ:    "invalid_input",
			code:   "ERR_EMPTY_COVER",
		},
		{
			name:   "cover too small",
			path:   "/api/hide",
			body:   map[string]string{"method": "homoglyph", "cover": "123 456", "secret": "x"},
			status: http.StatusUnprocessableEntity,
			typ:    "insufficient_capacity",
			code:   "ERR_INSUFFICIENT_CAPACITY",
		},
		{
			name:   "nothing hidden",
			path:   "/api/extract",
			body:   map[string]string{"method": "zerowidth", "text": prose},
			status: http.StatusUnprocessableEntity,
			typ:    "no_hidden_message",
			code:   "ERR_NO_DELIMITERS",
		},
		{
			name:   "wrong password",
			path:   "/api/extract",
			body:   map[string]string{"method": "zerowidth", "text": hidden.Text, "password": "wrong"},
			status: http.StatusUnauthorized,
			typ:    "authentication",
			code:   "ERR_DECRYPT_FAILED",
		},
		{
			name:   "unknown field",
			path:   "/api/analyze",
			body:   map[string]string{"txt": prose},
			status: http.StatusBadRequest,
			typ:    "invalid_input",
		},
		{
			name:   "trailing data",
			path:   "/api/analyze",
			body:   `{"text":"a"} {"text":"b"}`,
			status: http.StatusBadRequest,
			typ:    "invalid_input",
		},
		{
			name:   "empty body",
			path:   "/api/compare",
			body:   "",
			status: http.StatusBadRequest,
			typ:    "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp errorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.typ, resp.Type)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.MaxBodyBytes = 64
	})

	rec := do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: strings.Repeat("a", 100)}, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAnalyzeHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/hide", map[string]string{
		"method": "zerowidth", "cover": prose, "secret": "HI",
	}, nil)
	var hidden HideResponse
	decodeBody(t, rec, &hidden)

	t.Run("clean", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: prose}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var det analyzer.Detection
		decodeBody(t, rec, &det)
		assert.False(t, det.Detected)
	})

	t.Run("zero width", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: hidden.Text}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var det analyzer.Detection
		decodeBody(t, rec, &det)
		assert.True(t, det.HasZeroWidth)
		assert.True(t, det.Detected)
	})

	t.Run("html skips scripts", func(t *testing.T) {
		doc := "<p>" + prose + "</p><script>var m = '\u200b\u200c';</script>"
		rec := do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: doc, HTML: true}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var det analyzer.Detection
		decodeBody(t, rec, &det)
		assert.False(t, det.HasZeroWidth)
	})
}

func TestCompareHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/hide", map[string]string{
		"method": "homoglyph", "cover": prose, "secret": "HI",
	}, nil)
	var hidden HideResponse
	decodeBody(t, rec, &hidden)

	rec = do(t, s, http.MethodPost, "/api/compare", CompareRequest{Original: prose, Stego: hidden.Text}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cmp analyzer.Comparison
	decodeBody(t, rec, &cmp)
	assert.Equal(t, 5, cmp.Unicode.HomoglyphCount)
	assert.True(t, cmp.Detection.SuspiciousHomoglyphs)
	assert.NotEmpty(t, cmp.Distribution)
}

func TestCapacityHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/capacity?cover="+url.QueryEscape("aaaa aaaa aaaa aaaa"), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got services.Capacity
	decodeBody(t, rec, &got)
	assert.Equal(t, services.Capacity{Method: services.MethodHomoglyph, Bits: 16, Bytes: 2}, got)

	rec = do(t, s, http.MethodGet, "/api/capacity?method=zw&cover=a", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = services.Capacity{}
	decodeBody(t, rec, &got)
	assert.True(t, got.Unbounded)

	rec = do(t, s, http.MethodGet, "/api/capacity?method=lsb", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordListsHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/wordlists", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got WordListsResponse
	decodeBody(t, rec, &got)
	assert.True(t, got.Valid)
	assert.NotEmpty(t, got.Short)
	assert.NotEmpty(t, got.Long)
}

func TestVersionHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got version.Info
	decodeBody(t, rec, &got)
	assert.Equal(t, version.Get().Version, got.Version)
	assert.Equal(t, version.Get().Platform, got.Platform)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor("io"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("internal"))
}
