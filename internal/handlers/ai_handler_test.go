package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nismah/internal/ai"
)

type fakeCompleter struct {
	completion *ai.Completion
	err        error
	calls      int
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.Request) (*ai.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func newTestAIHandler(completer ai.Completer, window time.Duration) *AIHandler {
	h := NewAIHandler(completer, ai.NewThrottle(window))
	h.chunkDelay = 0
	return h
}

func postAI(h *AIHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	h.Ask(recorder, req)
	return recorder
}

func TestAskReturnsCompletion(t *testing.T) {
	completer := &fakeCompleter{completion: &ai.Completion{Text: "talk to a trusted adult", Model: "main-model"}}
	h := newTestAIHandler(completer, time.Minute)

	recorder := postAI(h, `{"prompt":"I am being bullied"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body["text"] != "talk to a trusted adult" {
		t.Errorf("unexpected text %q", body["text"])
	}
	if body["model"] != "main-model" {
		t.Errorf("unexpected model %q", body["model"])
	}
}

func TestAskRejectsEmptyPrompt(t *testing.T) {
	completer := &fakeCompleter{completion: &ai.Completion{Text: "x"}}
	h := newTestAIHandler(completer, time.Minute)

	recorder := postAI(h, `{"prompt":""}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if completer.calls != 0 {
		t.Error("upstream must not be called for an empty prompt")
	}
}

func TestAskSecondRequestThrottled(t *testing.T) {
	completer := &fakeCompleter{completion: &ai.Completion{Text: "answer", Model: "m"}}
	h := newTestAIHandler(completer, 10*time.Second)

	if code := postAI(h, `{"prompt":"first"}`).Code; code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}

	recorder := postAI(h, `{"prompt":"second"}`)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body["type"] != "rate_limit_error" {
		t.Errorf("expected rate_limit_error, got %q", body["type"])
	}
	if !strings.Contains(body["error"], "retry after") {
		t.Errorf("expected retry-after hint, got %q", body["error"])
	}
	if completer.calls != 1 {
		t.Errorf("throttled request must not reach upstream, calls = %d", completer.calls)
	}
}

func TestAskUnconfiguredReturnsAPIKeyError(t *testing.T) {
	completer := &fakeCompleter{err: ai.ErrNotConfigured}
	h := newTestAIHandler(completer, time.Minute)

	recorder := postAI(h, `{"prompt":"hello"}`)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}

	var body map[string]string
	json.Unmarshal(recorder.Body.Bytes(), &body)
	if body["type"] != "api_key_error" {
		t.Errorf("expected api_key_error, got %q", body["type"])
	}
}

func TestAskStreamsChunkedText(t *testing.T) {
	text := strings.Repeat("online safety matters. ", 10)
	completer := &fakeCompleter{completion: &ai.Completion{Text: text, Model: "m"}}
	h := newTestAIHandler(completer, time.Minute)

	recorder := postAI(h, `{"prompt":"hello","stream":true}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if got := recorder.Body.String(); got != text {
		t.Errorf("streamed body does not match completion text")
	}
	if !recorder.Flushed {
		t.Error("expected the handler to flush between chunks")
	}
}

func TestAskStreamUpstreamFailureEmitsErrorChunk(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream error (status 500): boom")}
	h := newTestAIHandler(completer, time.Minute)

	recorder := postAI(h, `{"prompt":"hello","stream":true}`)

	// Headers were already committed, so the failure arrives in-band
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); !strings.HasPrefix(body, "Error:") {
		t.Errorf("expected an Error chunk, got %q", body)
	}
}
