package intake

import "time"

// Step is a stage of the sequential collection flow. Steps only move
// forward in declaration order; the only way back is an explicit reset.
// Confirming and Cancelled are reserved: nothing transitions into them.
type Step string

const (
	StepGreeting          Step = "greeting"
	StepCollectingAge     Step = "collecting_age"
	StepCollectingPhone   Step = "collecting_phone"
	StepCollectingDetails Step = "collecting_details"
	StepConfirming        Step = "confirming"
	StepCompleted         Step = "completed"
	StepCancelled         Step = "cancelled"
)

// Patient holds the fields collected so far for one conversation.
type Patient struct {
	Name        string     `json:"name,omitempty"`
	Age         *int       `json:"age,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Details     string     `json:"details,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

// State is the intake automaton for one conversation. It is conversation
// scoped and ephemeral: the store never persists it.
type State struct {
	ConversationID string    `json:"conversation_id"`
	Step           Step      `json:"current_step"`
	Patient        Patient   `json:"patient"`
	StartedAt      time.Time `json:"started_at"`
	LastUpdated    time.Time `json:"last_updated"`
}

func newState(conversationID string, now time.Time) *State {
	return &State{
		ConversationID: conversationID,
		Step:           StepGreeting,
		StartedAt:      now,
		LastUpdated:    now,
	}
}

// Update is a tagged patient-field update. Exactly one field changes per
// update; the collection timestamps always refresh.
type Update interface{ isUpdate() }

type SetName string
type SetAge int
type SetPhone string
type SetDetails string

func (SetName) isUpdate()    {}
func (SetAge) isUpdate()     {}
func (SetPhone) isUpdate()   {}
func (SetDetails) isUpdate() {}

// apply mutates the matching patient field and stamps both timestamps.
func (s *State) apply(u Update, now time.Time) {
	switch v := u.(type) {
	case SetName:
		s.Patient.Name = string(v)
	case SetAge:
		age := int(v)
		s.Patient.Age = &age
	case SetPhone:
		s.Patient.Phone = string(v)
	case SetDetails:
		s.Patient.Details = string(v)
	}
	s.Patient.CollectedAt = &now
	s.LastUpdated = now
}

// advance runs one conversational turn through the automaton. When the
// current step's extractor succeeds the field is set and the step moves
// forward; otherwise the state is untouched and the caller re-prompts.
// Completed is terminal.
func (s *State) advance(text string, now time.Time) bool {
	switch s.Step {
	case StepGreeting:
		if name, ok := ExtractName(text); ok {
			s.apply(SetName(name), now)
			s.Step = StepCollectingAge
			return true
		}
	case StepCollectingAge:
		if age, ok := ExtractAge(text); ok {
			s.apply(SetAge(age), now)
			s.Step = StepCollectingPhone
			return true
		}
	case StepCollectingPhone:
		if phone, ok := ExtractPhone(text); ok {
			s.apply(SetPhone(phone), now)
			s.Step = StepCollectingDetails
			return true
		}
	case StepCollectingDetails:
		if details, ok := ExtractDetails(text); ok {
			s.apply(SetDetails(details), now)
			s.Step = StepCompleted
			return true
		}
	}
	return false
}

// IsComplete reports whether all four fields are collected.
func (s *State) IsComplete() bool {
	return s.Patient.Name != "" &&
		s.Patient.Age != nil &&
		s.Patient.Phone != "" &&
		s.Patient.Details != ""
}

// MissingFields lists the still-unset fields in collection order, for
// progress reporting.
func (s *State) MissingFields() []string {
	missing := []string{}
	if s.Patient.Name == "" {
		missing = append(missing, "name")
	}
	if s.Patient.Age == nil {
		missing = append(missing, "age")
	}
	if s.Patient.Phone == "" {
		missing = append(missing, "phone")
	}
	if s.Patient.Details == "" {
		missing = append(missing, "details")
	}
	return missing
}
