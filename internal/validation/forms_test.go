package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "buyer@example.com", false},
		{"valid with plus", "buyer+rfq@example.co.uk", false},
		{"missing at", "buyerexample.com", true},
		{"missing tld", "buyer@example", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+1 (555) 123-4567"))
	assert.NoError(t, ValidatePhone("0151 2345678"))
	assert.Error(t, ValidatePhone("call me"))
	assert.Error(t, ValidatePhone("12"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ada Lovelace"))
	assert.Error(t, ValidateName("A"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("x", 101)))
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("Please quote 100 brackets."))
	assert.Error(t, ValidateMessage("too short"))
	assert.Error(t, ValidateMessage(strings.Repeat("x", 5001)))
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		wantErr  bool
	}{
		{1, false},
		{100000, false},
		{0, true},
		{-5, true},
		{100001, true},
	}

	for _, tt := range tests {
		err := ValidateQuantity(tt.quantity)
		if tt.wantErr {
			assert.Error(t, err, "quantity %d", tt.quantity)
		} else {
			assert.NoError(t, err, "quantity %d", tt.quantity)
		}
	}
}

func TestValidateThickness(t *testing.T) {
	assert.NoError(t, ValidateThickness(0.1))
	assert.NoError(t, ValidateThickness(500))
	assert.Error(t, ValidateThickness(0.05))
	assert.Error(t, ValidateThickness(500.5))
	assert.Error(t, ValidateThickness(-3))
}

func TestValidateMaterialAndProcess(t *testing.T) {
	assert.NoError(t, ValidateMaterial("steel"))
	assert.NoError(t, ValidateMaterial("Stainless-Steel"))
	assert.Error(t, ValidateMaterial("unobtainium"))
	assert.Error(t, ValidateMaterial(""))

	assert.NoError(t, ValidateProcess("laser-cutting"))
	assert.NoError(t, ValidateProcess("Welding"))
	assert.Error(t, ValidateProcess("3d-printing"))
}

func TestFieldErrorsKeepFirstProblem(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("email", "invalid email format")
	fe.Add("email", "something else")

	assert.Equal(t, "invalid email format", fe["email"])
	assert.Len(t, fe, 1)
}
