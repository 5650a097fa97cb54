package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, map[string]string{"error": userMsg})
}

// respondWithAIError writes the structured error body used by the assistant
// endpoint, carrying a stable error type alongside the message.
func respondWithAIError(w http.ResponseWriter, status int, userMsg, errType string, err error) {
	if err != nil {
		log.Printf("AI request failed (%s): %v", errType, err)
	}

	body := map[string]string{
		"error": userMsg,
		"type":  errType,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	respondWithJSON(w, status, body)
}
