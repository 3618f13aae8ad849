// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shibata-lab/labpipe/pkg/types"
)

// newOllamaStub serves the generate endpoint with a fixed response body.
func newOllamaStub(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathGenerate {
			http.NotFound(w, r)
			return
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Stream {
			t.Error("stream should be disabled")
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: response})
	}))
}

func newLLMTestParser(baseURL string) *LLMParser {
	return NewLLMParser(types.IngestConfig{
		OllamaConfig: types.OllamaConfig{BaseURL: baseURL, Model: "test-model", MaxRetries: 1},
	})
}

func TestLLMParserParsesModelJSON(t *testing.T) {
	srv := newOllamaStub(t, `Here is the result:
{"authors": ["Alice Smith", "Kenji Ota"], "title": "Neural Coding in Rats",
 "journal": "Neural Networks", "volume": "12", "issue": "3", "pages": "100-112",
 "year": 2021, "doi": "https://doi.org/10.1234/abc", "type": "journal"}`)
	defer srv.Close()

	p, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw citation", types.TypeConference)
	if err != nil {
		t.Fatal(err)
	}

	if !p.Valid() {
		t.Fatalf("record flagged invalid: %v", p.Errors)
	}
	if p.Title != "Neural Coding in Rats" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Authors) != 2 {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Year != 2021 {
		t.Errorf("Year = %d", p.Year)
	}
	if p.DOI != "10.1234/abc" {
		t.Errorf("DOI = %q, want URL prefix stripped", p.DOI)
	}
	if p.Type != types.TypeJournal {
		t.Errorf("Type = %s, model's type should win over fallback", p.Type)
	}
}

func TestLLMParserStripsThinkTags(t *testing.T) {
	srv := newOllamaStub(t, `<think>
Let me work through this {not the answer}.
</think>
{"authors": ["Alice Smith"], "title": "A Study", "year": 2020, "type": "journal"}`)
	defer srv.Close()

	p, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw", types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "A Study" {
		t.Errorf("Title = %q, thinking block should be ignored", p.Title)
	}
}

func TestLLMParserInvalidTypeFallsBack(t *testing.T) {
	srv := newOllamaStub(t, `{"authors": ["Alice Smith"], "title": "A Study", "type": "keynote"}`)
	defer srv.Close()

	p, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw", types.TypePresentation)
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != types.TypePresentation {
		t.Errorf("Type = %s, unknown model type should fall back", p.Type)
	}
}

func TestLLMParserNoJSONFlagsRecord(t *testing.T) {
	srv := newOllamaStub(t, "I could not parse that citation.")
	defer srv.Close()

	p, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw", types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}
	if p.Valid() {
		t.Error("record without model JSON should be flagged invalid")
	}
}

func TestLLMParserRetriesServerErrors(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"authors": ["Alice Smith"], "title": "Retried", "type": "journal"}`,
		})
	}))
	defer srv.Close()

	p, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw", types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Retried" {
		t.Errorf("Title = %q", p.Title)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestLLMParserExhaustedRetries(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newLLMTestParser(srv.URL).Parse(context.Background(), "raw", types.TypeJournal); err == nil {
		t.Error("expected error after retries exhausted")
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		ok       bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"surrounded by prose", `sure: {"a": 1} hope that helps`, `{"a": 1}`, true},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"no object", "nothing here", "", false},
		{"only think block", "<think>{hidden}</think>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.response)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, %v; want %q, %v", tt.response, got, ok, tt.want, tt.ok)
			}
		})
	}
}
