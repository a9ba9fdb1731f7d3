package server

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/htmltext"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/conneroisu/stegtext/internal/version"
)

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
}

// HideResponse is returned by POST /api/hide.
type HideResponse struct {
	Method services.Method `json:"method"`
	Text   string          `json:"text"`
}

// ExtractResponse is returned by POST /api/extract. Secret holds the
// recovered bytes as text; when they are not valid UTF-8 it carries
// replacement characters and SecretBase64 holds the exact bytes.
type ExtractResponse struct {
	Method       services.Method `json:"method"`
	Secret       string          `json:"secret"`
	SecretBase64 string          `json:"secret_b64,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze. With HTML set, only the
// visible text of the document is scored.
type AnalyzeRequest struct {
	Text string `json:"text"`
	HTML bool   `json:"html,omitempty"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Original string `json:"original"`
	Stego    string `json:"stego"`
}

// WordListsResponse is returned by GET /api/wordlists.
type WordListsResponse struct {
	Short []string `json:"short"`
	Long  []string `json:"long"`
	Valid bool     `json:"valid"`
	Error string   `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   version.Short(),
		"uptime":    time.Since(s.upSince).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}

func (s *Server) handleWordLists(w http.ResponseWriter, r *http.Request) {
	words := s.stego.WordLists()
	resp := WordListsResponse{Short: words.Short(), Long: words.Long(), Valid: true}
	if err := words.Validate(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("method")
	if name == "" {
		name = services.MethodHomoglyph.String()
	}

	method, err := services.ParseMethod(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	capacity, err := s.stego.Capacity(method, query.Get("cover"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, capacity)
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	var req services.HideRequest
	if !s.decode(w, r, &req) {
		return
	}
	method, err := services.ParseMethod(req.Method.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Method = method

	text, err := s.stego.Hide(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HideResponse{Method: method, Text: text})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req services.ExtractRequest
	if !s.decode(w, r, &req) {
		return
	}
	method, err := services.ParseMethod(req.Method.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Method = method

	secret, err := s.stego.Extract(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := ExtractResponse{Method: method, Secret: secret}
	if !utf8.ValidString(secret) {
		resp.SecretBase64 = base64.StdEncoding.EncodeToString([]byte(secret))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	detection, err := s.analyze(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detection)
}

func (s *Server) analyze(req AnalyzeRequest) (analyzer.Detection, error) {
	text := req.Text
	if req.HTML {
		visible, err := htmltext.VisibleString(text)
		if err != nil {
			return analyzer.Detection{}, errors.NewInvalidInputError(errors.ErrCodeEmptyText, "could not parse HTML: "+err.Error())
		}
		text = visible
	}
	return s.stego.Detect(text), nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.stego.Compare(req.Original, req.Stego))
}

// decode reads a single JSON object from the body. On failure it writes the
// response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = stderrors.New("body must contain a single JSON object")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: "request body too large",
			Type:  string(errors.ErrorTypeInvalidInput),
		})
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: "invalid JSON body: " + err.Error(),
		Type:  string(errors.ErrorTypeInvalidInput),
	})
	return false
}

// statusFor maps an error category to an HTTP status.
func statusFor(t errors.ErrorType) int {
	switch t {
	case errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeCapacity, errors.ErrorTypeNoMessage:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = errors.EnhanceError(err, "route", r.Method+" "+r.URL.Path)
	s.errors.Handle(r.Context(), err)

	t := errors.TypeOf(err)
	status := statusFor(t)
	resp := errorResponse{Error: err.Error(), Type: string(t)}

	var se *errors.StegError
	if stderrors.As(err, &se) {
		resp.Code = se.Code
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
