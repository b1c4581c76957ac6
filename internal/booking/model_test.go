package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepartment(t *testing.T) {
	dept, err := ParseDepartment("  Cardiology ")
	require.NoError(t, err)
	assert.Equal(t, DeptCardiology, dept)

	_, err = ParseDepartment("radiology")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("NO_SHOW")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, st)

	_, err = ParseStatus("archived")
	assert.True(t, IsValidation(err))
}

func TestParsePriorityDefault(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, p)

	p, err = ParsePriority("EMERGENCY")
	require.NoError(t, err)
	assert.Equal(t, PriorityEmergency, p)

	_, err = ParsePriority("urgent")
	assert.True(t, IsValidation(err))
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", d.String())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-14"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	tod, err := ParseTimeOfDay("14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30:00", tod.String())

	data, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"14:30:00"`, string(data))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, tod.Equal(back))
}

func TestDateOrdering(t *testing.T) {
	early := NewDate(2025, time.March, 1)
	late := NewDate(2025, time.March, 2)
	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
}

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{
		PatientName:  "John Doe",
		PatientPhone: "9876543210",
		PatientAge:   30,
		Department:   DeptDental,
		BookingDate:  NewDate(2025, time.June, 1),
		BookingTime:  NewTimeOfDay(10, 0, 0),
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, PriorityNormal, valid.Priority)

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"short name", func(r *CreateRequest) { r.PatientName = "J" }},
		{"short phone", func(r *CreateRequest) { r.PatientPhone = "12345" }},
		{"non-digit phone", func(r *CreateRequest) { r.PatientPhone = "98765x3210" }},
		{"negative age", func(r *CreateRequest) { r.PatientAge = -1 }},
		{"age too high", func(r *CreateRequest) { r.PatientAge = 151 }},
		{"missing department", func(r *CreateRequest) { r.Department = "" }},
		{"missing date", func(r *CreateRequest) { r.BookingDate = Date{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}
