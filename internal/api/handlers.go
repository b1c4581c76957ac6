package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careline/token-booking/internal/booking"
	redisclient "github.com/careline/token-booking/internal/redis"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func createTokenHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		createReq, err := toCreateRequest(req)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		b, err := svc.CreateBooking(r.Context(), createReq)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, TokenResponse{
			Success:        true,
			Message:        fmt.Sprintf("Token booking successful! Your token number is %d", b.TokenNumber),
			TokenID:        b.TokenID,
			TokenNumber:    b.TokenNumber,
			BookingDetails: b,
		})
	}
}

func toCreateRequest(req CreateTokenRequest) (booking.CreateRequest, error) {
	dept, err := booking.ParseDepartment(req.Department)
	if err != nil {
		return booking.CreateRequest{}, err
	}
	date, err := booking.ParseDate(req.BookingDate)
	if err != nil {
		return booking.CreateRequest{}, err
	}
	tod, err := booking.ParseTimeOfDay(req.BookingTime)
	if err != nil {
		return booking.CreateRequest{}, err
	}
	priority, err := booking.ParsePriority(req.Priority)
	if err != nil {
		return booking.CreateRequest{}, err
	}

	return booking.CreateRequest{
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		PatientAge:   req.PatientAge,
		Department:   dept,
		DoctorName:   req.DoctorName,
		BookingDate:  date,
		BookingTime:  tod,
		Symptoms:     req.Symptoms,
		Priority:     priority,
		Notes:        req.Notes,
	}, nil
}

func getTokenHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenID := chi.URLParam(r, "tokenID")

		b, err := svc.GetBooking(tokenID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			Success:        true,
			Message:        "Token booking retrieved successfully",
			TokenID:        b.TokenID,
			TokenNumber:    b.TokenNumber,
			BookingDetails: b,
		})
	}
}

func updateTokenHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenID := chi.URLParam(r, "tokenID")

		var req UpdateTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		status, err := booking.ParseStatus(req.Status)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		b, err := svc.UpdateBooking(r.Context(), tokenID, status, req.Notes)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			Success:        true,
			Message:        fmt.Sprintf("Token status updated to %s", b.Status),
			TokenID:        b.TokenID,
			TokenNumber:    b.TokenNumber,
			BookingDetails: b,
		})
	}
}

func cancelTokenHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenID := chi.URLParam(r, "tokenID")

		b, err := svc.CancelBooking(r.Context(), tokenID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			Success:        true,
			Message:        "Token booking cancelled",
			TokenID:        b.TokenID,
			TokenNumber:    b.TokenNumber,
			BookingDetails: b,
		})
	}
}

func searchTokensHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := booking.SearchFilter{
			PatientName:  q.Get("patient_name"),
			PatientPhone: q.Get("patient_phone"),
		}

		if v := q.Get("department"); v != "" {
			dept, err := booking.ParseDepartment(v)
			if err != nil {
				handleBookingError(w, err)
				return
			}
			filter.Department = dept
		}
		if v := q.Get("booking_date"); v != "" {
			date, err := booking.ParseDate(v)
			if err != nil {
				handleBookingError(w, err)
				return
			}
			filter.Date = &date
		}
		if v := q.Get("status"); v != "" {
			status, err := booking.ParseStatus(v)
			if err != nil {
				handleBookingError(w, err)
				return
			}
			filter.Status = status
		}
		if v := q.Get("token_number"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_token_number", "token_number must be an integer")
				return
			}
			filter.TokenNumber = n
		}

		writeJSON(w, http.StatusOK, svc.SearchBookings(filter))
	}
}

func dailyTokensHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := booking.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			handleBookingError(w, err)
			return
		}

		var dept booking.Department
		if v := r.URL.Query().Get("department"); v != "" {
			dept, err = booking.ParseDepartment(v)
			if err != nil {
				handleBookingError(w, err)
				return
			}
		}

		writeJSON(w, http.StatusOK, svc.GetDailyBookings(date, dept))
	}
}

func statsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.GetStats())
	}
}

func departmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := make([]EnumEntry, 0, len(booking.Departments))
		for _, d := range booking.Departments {
			entries = append(entries, EnumEntry{Value: string(d), Name: d.DisplayName()})
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func statusesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := make([]EnumEntry, 0, len(booking.Statuses))
		for _, s := range booking.Statuses {
			entries = append(entries, EnumEntry{Value: string(s), Name: s.DisplayName()})
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func setCurrentTokenHandler(tracker *booking.ServingTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetCurrentTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Department == "" || req.DoctorName == "" || req.TokenID == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "department, doctor_name and token_id are required")
			return
		}

		n, err := tracker.SetCurrentToken(r.Context(), req.Department, req.DoctorName, req.TokenID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SetCurrentTokenResponse{
			Success:     true,
			Message:     fmt.Sprintf("Dr. %s is now serving Token #%d", req.DoctorName, n),
			TokenNumber: n,
		})
	}
}

func getCurrentTokenHandler(tracker *booking.ServingTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi hands back the raw path segment, so "Dr.%20Sharma" needs
		// unescaping before the lookup.
		doctorName := chi.URLParam(r, "doctorName")
		if unescaped, err := url.PathUnescape(doctorName); err == nil {
			doctorName = unescaped
		}

		entry, err := tracker.GetCurrentToken(doctorName)
		if err != nil {
			// A clinician with no serving entry is not an error condition.
			if errors.Is(err, booking.ErrServingNotFound) {
				writeJSON(w, http.StatusOK, CurrentTokenResponse{
					Success: false,
					Message: fmt.Sprintf("No current token information for Dr. %s", doctorName),
				})
				return
			}
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CurrentTokenResponse{
			Success:      true,
			Message:      "Current token retrieved successfully",
			CurrentToken: entry,
		})
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var ve *booking.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "token_not_found", err.Error())
	case errors.Is(err, booking.ErrBookingConflict):
		writeError(w, http.StatusConflict, "booking_conflict", err.Error())
	case errors.Is(err, booking.ErrWrongDepartment):
		writeError(w, http.StatusBadRequest, "wrong_department", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "partition_busy", "this department and date is being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
