// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

// RFQ numeric ranges.
const (
	MinQuantity    = 1
	MaxQuantity    = 100000
	MinThicknessMM = 0.1
	MaxThicknessMM = 500.0
)

var knownMaterials = map[string]struct{}{
	"steel":           {},
	"stainless-steel": {},
	"aluminum":        {},
	"brass":           {},
	"copper":          {},
	"titanium":        {},
	"galvanized":      {},
}

var knownProcesses = map[string]struct{}{
	"laser-cutting": {},
	"plasma-cutting": {},
	"welding":       {},
	"cnc-machining": {},
	"bending":       {},
	"rolling":       {},
	"assembly":      {},
	"coating":       {},
}

// FieldErrors maps field names to human-readable problems.
type FieldErrors map[string]string

// Add records a problem for a field unless one is already present.
func (f FieldErrors) Add(field, problem string) {
	if _, exists := f[field]; !exists {
		f[field] = problem
	}
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidatePhone checks a loosely formatted international phone number.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format")
	}
	return nil
}

// ValidateName checks a contact name.
func ValidateName(name string) error {
	n := len(strings.TrimSpace(name))
	if n < 2 {
		return fmt.Errorf("name must be at least 2 characters long")
	}
	if n > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	return nil
}

// ValidateMessage checks a free-text message body.
func ValidateMessage(message string) error {
	n := len(strings.TrimSpace(message))
	if n < 10 {
		return fmt.Errorf("message must be at least 10 characters long")
	}
	if n > 5000 {
		return fmt.Errorf("message must not exceed 5000 characters")
	}
	return nil
}

// ValidateQuantity checks an RFQ part quantity.
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return fmt.Errorf("quantity must be between %d and %d", MinQuantity, MaxQuantity)
	}
	return nil
}

// ValidateThickness checks an RFQ material thickness in millimeters.
func ValidateThickness(mm float64) error {
	if mm < MinThicknessMM || mm > MaxThicknessMM {
		return fmt.Errorf("thickness must be between %.1f and %.1f mm", MinThicknessMM, MaxThicknessMM)
	}
	return nil
}

// ValidateMaterial checks the material against the known set.
func ValidateMaterial(material string) error {
	if _, ok := knownMaterials[strings.ToLower(material)]; !ok {
		return fmt.Errorf("unknown material %q", material)
	}
	return nil
}

// ValidateProcess checks the fabrication process against the known set.
func ValidateProcess(process string) error {
	if _, ok := knownProcesses[strings.ToLower(process)]; !ok {
		return fmt.Errorf("unknown process %q", process)
	}
	return nil
}
