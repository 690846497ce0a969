package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	pinCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
)

// Address is a delivery address. It is stored as a JSON column.
type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Landmark   string `json:"landmark,omitempty"`
}

// NewAddress trims and validates the address fields
func NewAddress(a Address) (Address, error) {
	a = a.normalized()
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (a Address) normalized() Address {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.ReplaceAll(strings.TrimSpace(a.Phone), " ", "")
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Landmark = strings.TrimSpace(a.Landmark)
	return a
}

// Validate checks that the required fields are present and well formed
func (a Address) Validate() error {
	switch {
	case a.FullName == "":
		return errors.New("full name is required")
	case len(a.FullName) > 100:
		return errors.New("full name cannot exceed 100 characters")
	case !phonePattern.MatchString(a.Phone):
		return errors.New("phone must be 10 to 13 digits")
	case a.Line1 == "":
		return errors.New("address line 1 is required")
	case len(a.Line1) > 200 || len(a.Line2) > 200:
		return errors.New("address lines cannot exceed 200 characters")
	case a.City == "":
		return errors.New("city is required")
	case a.State == "":
		return errors.New("state is required")
	case !pinCodePattern.MatchString(a.PostalCode):
		return errors.New("postal code must be a 6 digit PIN code")
	}
	return nil
}

// IsEmpty returns true if no address has been set
func (a Address) IsEmpty() bool {
	return a.FullName == "" && a.Line1 == "" && a.City == "" && a.PostalCode == ""
}

// String returns a single-line representation
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	if a.Landmark != "" {
		parts = append(parts, "near "+a.Landmark)
	}
	parts = append(parts, a.City, fmt.Sprintf("%s %s", a.State, a.PostalCode))
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}
