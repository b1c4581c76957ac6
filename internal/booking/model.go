package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Statuses lists every valid booking status in declaration order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
}

type Department string

const (
	DeptGeneralMedicine Department = "general_medicine"
	DeptCardiology      Department = "cardiology"
	DeptPediatrics      Department = "pediatrics"
	DeptGynecology      Department = "gynecology"
	DeptOrthopedics     Department = "orthopedics"
	DeptEmergency       Department = "emergency"
	DeptDental          Department = "dental"
	DeptDermatology     Department = "dermatology"
	DeptPsychiatry      Department = "psychiatry"
)

// Departments is the fixed closed set of clinical departments.
var Departments = []Department{
	DeptGeneralMedicine,
	DeptCardiology,
	DeptPediatrics,
	DeptGynecology,
	DeptOrthopedics,
	DeptEmergency,
	DeptDental,
	DeptDermatology,
	DeptPsychiatry,
}

func ParseDepartment(s string) (Department, error) {
	d := Department(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Departments {
		if d == known {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "department", Reason: fmt.Sprintf("unknown department %q", s)}
}

// DisplayName renders a department value for user-facing lists,
// e.g. "general_medicine" -> "General Medicine".
func (d Department) DisplayName() string {
	words := strings.Split(string(d), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// DisplayName renders a status value for user-facing lists.
func (s Status) DisplayName() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency}

// ParsePriority accepts an empty string as the default "normal".
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityNormal, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", s)}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Date is a calendar date without a time component. It marshals as
// "2006-01-02" so persisted files stay human-readable.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "booking_date", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)}
	}
	return Date{t: t}, nil
}

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.t = t
	return nil
}

// TimeOfDay is a wall-clock time without a date. It marshals as
// "15:04:05"; parsing also accepts the short "15:04" form.
type TimeOfDay struct {
	t time.Time
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{t: time.Date(0, 1, 1, hour, minute, second, 0, time.UTC)}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{t: t}, nil
		}
	}
	return TimeOfDay{}, &ValidationError{Field: "booking_time", Reason: fmt.Sprintf("invalid time %q, expected HH:MM or HH:MM:SS", s)}
}

func (t TimeOfDay) String() string { return t.t.Format(timeLayout) }

func (t TimeOfDay) Equal(o TimeOfDay) bool { return t.t.Equal(o.t) }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.t.Before(o.t) }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return fmt.Errorf("parse time %q: %w", s, err)
	}
	t.t = parsed.t
	return nil
}

// Booking is one confirmed token request. TokenID is its immutable
// identity; TokenNumber is unique within the (department, date) partition.
type Booking struct {
	TokenID      string     `json:"token_id"`
	PatientName  string     `json:"patient_name"`
	PatientPhone string     `json:"patient_phone"`
	PatientAge   int        `json:"patient_age"`
	Department   Department `json:"department"`
	DoctorName   string     `json:"doctor_name,omitempty"`
	BookingDate  Date       `json:"booking_date"`
	BookingTime  TimeOfDay  `json:"booking_time"`
	TokenNumber  int        `json:"token_number"`
	Status       Status     `json:"status"`
	Symptoms     string     `json:"symptoms,omitempty"`
	Priority     Priority   `json:"priority"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Notes        string     `json:"notes,omitempty"`
}

// ServingEntry records which booking a clinician is presently attending.
// One entry per (department, doctor) pair, overwritten wholesale.
type ServingEntry struct {
	Department         string    `json:"department"`
	DoctorName         string    `json:"doctor_name"`
	CurrentTokenID     string    `json:"current_token_id"`
	CurrentTokenNumber int       `json:"current_token_number"`
	PatientName        string    `json:"patient_name"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateRequest carries the caller-supplied fields for a new booking.
type CreateRequest struct {
	PatientName  string
	PatientPhone string
	PatientAge   int
	Department   Department
	DoctorName   string
	BookingDate  Date
	BookingTime  TimeOfDay
	Symptoms     string
	Priority     Priority
	Notes        string
}

// Validate applies the original intake constraints: name length, digit-only
// phone of 10-15 digits, age within [0,150].
func (r *CreateRequest) Validate() error {
	name := strings.TrimSpace(r.PatientName)
	if len(name) < 2 || len(name) > 100 {
		return &ValidationError{Field: "patient_name", Reason: "name must be 2-100 characters"}
	}
	phone := strings.TrimSpace(r.PatientPhone)
	if len(phone) < 10 || len(phone) > 15 {
		return &ValidationError{Field: "patient_phone", Reason: "phone must be 10-15 digits"}
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return &ValidationError{Field: "patient_phone", Reason: "phone must contain only digits"}
		}
	}
	if r.PatientAge < 0 || r.PatientAge > 150 {
		return &ValidationError{Field: "patient_age", Reason: "age must be between 0 and 150"}
	}
	if r.Department == "" {
		return &ValidationError{Field: "department", Reason: "department is required"}
	}
	if r.BookingDate.IsZero() {
		return &ValidationError{Field: "booking_date", Reason: "booking date is required"}
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
	r.PatientName = name
	r.PatientPhone = phone
	return nil
}

func newTokenID() string {
	return uuid.NewString()
}
