package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSyrianPhone(t *testing.T) {
	valid := []string{"912345678", "0912345678", "0912 345 678", "(0)912-345-678"}
	for _, p := range valid {
		assert.True(t, IsSyrianPhone(p), p)
	}

	invalid := []string{"812345678", "1912345678", "91234567", "09123456789", ""}
	for _, p := range invalid {
		assert.False(t, IsSyrianPhone(p), p)
	}
}

func TestNormalizePhone(t *testing.T) {
	for _, p := range []string{"0912345678", "912345678", "0912 345 678", "(0)912-345-678", "912-345-678"} {
		assert.Equal(t, "0912345678", NormalizePhone(p), p)
	}
	assert.Equal(t, "812345678", NormalizePhone("812-345-678"))
	assert.Empty(t, NormalizePhone("n/a"))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Secret123"))
	assert.False(t, IsStrongPassword("Sec123"), "too short")
	assert.False(t, IsStrongPassword("secret123"), "no uppercase")
	assert.False(t, IsStrongPassword("SECRET123"), "no lowercase")
	assert.False(t, IsStrongPassword("SecretPass"), "no digit")
}

func TestIsClock(t *testing.T) {
	assert.True(t, IsClock("00:00"))
	assert.True(t, IsClock("23:59"))
	assert.False(t, IsClock("9:00"))
	assert.False(t, IsClock("24:00"))
}

type sampleRequest struct {
	Password  string `json:"password" validate:"required,strongpassword"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	Date      string `json:"date" validate:"required,isodate"`
	Phone     string `json:"phone_number" validate:"omitempty,syrianphone"`
}

func TestValidate_FormatsErrorsByJSONName(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{Password: "weak", StartTime: "9am", Date: "19/10/2026", Phone: "123"})
	assert.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "start_time")
	assert.Contains(t, errs, "date")
	assert.Equal(t, "phone_number must be a valid Syrian phone number", errs["phone_number"])
}

func TestValidate_Passes(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&sampleRequest{Password: "Secret123", StartTime: "09:30", Date: "2026-10-19"}))
}

func TestValidate_WeekdayKeys(t *testing.T) {
	type scheduleRequest struct {
		Days map[string]bool `json:"schedule" validate:"required,dive,keys,weekday,endkeys"`
	}
	v := NewValidator()

	assert.NoError(t, v.Validate(&scheduleRequest{Days: map[string]bool{"monday": true, "friday": false}}))

	err := v.Validate(&scheduleRequest{Days: map[string]bool{"Funday": true}})
	assert.Error(t, err)
	for _, msg := range v.FormatValidationErrors(err) {
		assert.Contains(t, msg, "weekday")
	}
}
