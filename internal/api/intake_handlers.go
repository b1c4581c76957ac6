package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careline/token-booking/internal/intake"
)

func advanceIntakeHandler(store *intake.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "conversationID")
		if strings.TrimSpace(conversationID) == "" {
			writeError(w, http.StatusBadRequest, "missing_conversation_id", "conversation id is required")
			return
		}

		var req IntakeAdvanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		state, changed := store.Advance(conversationID, req.Message)
		writeJSON(w, http.StatusOK, toIntakeResponse(state, changed))
	}
}

func resetIntakeHandler(store *intake.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "conversationID")
		if strings.TrimSpace(conversationID) == "" {
			writeError(w, http.StatusBadRequest, "missing_conversation_id", "conversation id is required")
			return
		}

		state := store.Reset(conversationID)
		writeJSON(w, http.StatusOK, toIntakeResponse(state, true))
	}
}

func toIntakeResponse(state intake.State, changed bool) IntakeStateResponse {
	return IntakeStateResponse{
		ConversationID: state.ConversationID,
		CurrentStep:    state.Step,
		Patient:        state.Patient,
		Changed:        changed,
		Complete:       state.IsComplete(),
		MissingFields:  state.MissingFields(),
		StartedAt:      state.StartedAt,
		LastUpdated:    state.LastUpdated,
	}
}
