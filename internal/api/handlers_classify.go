package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ouslabs/docclass/internal/parser"
)

type classifyTextRequest struct {
	Text string `json:"text"`
}

// handleClassify accepts either a multipart file upload or a JSON body
// with raw text, and returns the classification result synchronously.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OracleTimeout)
	defer cancel()

	text, err := s.classifyInput(w, r)
	if err != nil {
		// classifyInput has already written the error response.
		return
	}
	if strings.TrimSpace(text) == "" {
		jsonError(w, "document has no extractable text", http.StatusBadRequest)
		return
	}

	result := s.classifier.Classify(ctx, text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// classifyInput extracts document text from the request. On failure it
// writes an error response and returns a non-nil error.
func (s *Server) classifyInput(w http.ResponseWriter, r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		var req classifyTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return "", err
		}
		return req.Text, nil
	}

	// Multipart file upload.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", err
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		err := fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		err := fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return "", err
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", err
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return "", err
	}
	return doc.Text, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
