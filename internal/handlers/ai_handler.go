package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"nismah/internal/ai"
)

const streamChunkCount = 20

// AIHandler handles the safety assistant endpoint
type AIHandler struct {
	completer  ai.Completer
	throttle   *ai.Throttle
	chunkDelay time.Duration
}

// NewAIHandler creates a new AI handler
func NewAIHandler(completer ai.Completer, throttle *ai.Throttle) *AIHandler {
	return &AIHandler{
		completer:  completer,
		throttle:   throttle,
		chunkDelay: 50 * time.Millisecond,
	}
}

type aiRequest struct {
	Prompt        string  `json:"prompt"`
	SystemMessage string  `json:"systemMessage"`
	MaxTokens     int     `json:"maxTokens"`
	Temperature   float64 `json:"temperature"`
	Stream        bool    `json:"stream"`
}

const assistantSystemPrompt = "You are a child-safety assistant for families. " +
	"Give practical, age-appropriate guidance on online safety, bullying and abuse " +
	"prevention. Encourage minors to involve a trusted adult, and never request " +
	"personal information."

// Ask handles POST /api/ai
func (h *AIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "Prompt is required", "", nil)
		return
	}

	// One request at a time platform-wide; everyone shares the cooldown
	if allowed, retryAfter := h.throttle.Allow(); !allowed {
		seconds := int(retryAfter / time.Second)
		respondWithAIError(w, http.StatusTooManyRequests,
			fmt.Sprintf("The assistant is cooling down, retry after %d seconds", seconds),
			"rate_limit_error", nil)
		return
	}

	system := req.SystemMessage
	if system == "" {
		system = assistantSystemPrompt
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	completionReq := ai.Request{
		Prompt:      req.Prompt,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	if req.Stream {
		h.streamCompletion(w, r, completionReq)
		return
	}

	completion, err := h.completer.Complete(r.Context(), completionReq)
	if err != nil {
		h.respondCompletionError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"text":  completion.Text,
		"model": completion.Model,
	})
}

func (h *AIHandler) respondCompletionError(w http.ResponseWriter, err error) {
	errType := ai.Classify(err)
	switch errType {
	case "api_key_error":
		if errors.Is(err, ai.ErrNotConfigured) {
			respondWithAIError(w, http.StatusInternalServerError,
				"The assistant is not configured", errType, err)
			return
		}
		respondWithAIError(w, http.StatusInternalServerError,
			"The assistant rejected our credentials", errType, err)
	case "quota_exceeded":
		respondWithAIError(w, http.StatusServiceUnavailable,
			"The assistant's usage quota is exhausted", errType, err)
	case "model_error":
		respondWithAIError(w, http.StatusBadGateway,
			"The assistant's model is unavailable", errType, err)
	case "rate_limit_error":
		respondWithAIError(w, http.StatusTooManyRequests,
			"The assistant is receiving too many requests", errType, err)
	default:
		respondWithAIError(w, http.StatusBadGateway,
			"The assistant is unavailable right now", errType, err)
	}
}

// streamCompletion simulates a token stream: headers go out immediately,
// the full completion is fetched, then emitted as time-spaced plain-text
// chunks. Upstream failures after the headers surface as an Error chunk.
func (h *AIHandler) streamCompletion(w http.ResponseWriter, r *http.Request, req ai.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	completion, err := h.completer.Complete(r.Context(), req)
	if err != nil {
		log.Printf("AI stream failed (%s): %v", ai.Classify(err), err)
		fmt.Fprintf(w, "Error: %s", err.Error())
		return
	}

	chunks := completion.Slices(streamChunkCount)
	for i, chunk := range chunks {
		if _, err := w.Write([]byte(chunk)); err != nil {
			// Client went away; nothing left to do
			return
		}
		if canFlush {
			flusher.Flush()
		}
		if i < len(chunks)-1 {
			time.Sleep(h.chunkDelay)
		}
	}
}
