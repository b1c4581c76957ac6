package api

import (
	"time"

	"github.com/careline/token-booking/internal/booking"
	"github.com/careline/token-booking/internal/intake"
)

type CreateTokenRequest struct {
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	PatientAge   int    `json:"patient_age"`
	Department   string `json:"department"`
	DoctorName   string `json:"doctor_name,omitempty"`
	BookingDate  string `json:"booking_date"`
	BookingTime  string `json:"booking_time"`
	Symptoms     string `json:"symptoms,omitempty"`
	Priority     string `json:"priority,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type UpdateTokenRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// TokenResponse is the success/failure envelope every booking operation
// returns, mirroring the persisted booking shape in booking_details.
type TokenResponse struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message"`
	TokenID        string           `json:"token_id,omitempty"`
	TokenNumber    int              `json:"token_number,omitempty"`
	BookingDetails *booking.Booking `json:"booking_details,omitempty"`
}

type SetCurrentTokenRequest struct {
	Department string `json:"department"`
	DoctorName string `json:"doctor_name"`
	TokenID    string `json:"token_id"`
}

type SetCurrentTokenResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TokenNumber int    `json:"token_number,omitempty"`
}

type CurrentTokenResponse struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	CurrentToken *booking.ServingEntry `json:"current_token"`
}

type EnumEntry struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

type IntakeAdvanceRequest struct {
	Message string `json:"message"`
}

// IntakeStateResponse is a snapshot of one conversation's collection
// progress after a turn.
type IntakeStateResponse struct {
	ConversationID string         `json:"conversation_id"`
	CurrentStep    intake.Step    `json:"current_step"`
	Patient        intake.Patient `json:"patient"`
	Changed        bool           `json:"changed"`
	Complete       bool           `json:"complete"`
	MissingFields  []string       `json:"missing_fields"`
	StartedAt      time.Time      `json:"started_at"`
	LastUpdated    time.Time      `json:"last_updated"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
