package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GovIDType classifies the government-issued document behind GovIDNumber.
type GovIDType uint8

const (
	// GovIDTypeUnset marks a record whose document type was never supplied.
	GovIDTypeUnset GovIDType = iota
	GovIDTypeDriversLicense
	GovIDTypePassport
	GovIDTypeSocialInsuranceNumber
)

// ErrUnknownGovIDType is matched by every error for a value naming no known
// document type.
var ErrUnknownGovIDType = errors.New("unknown gov_id_type")

// UnknownGovIDTypeError carries the rejected raw value.
type UnknownGovIDTypeError struct {
	Raw string
}

func (e *UnknownGovIDTypeError) Error() string {
	return fmt.Sprintf("'%s' is not a valid gov_id_type", e.Raw)
}

// Is makes errors.Is(err, ErrUnknownGovIDType) hold.
func (e *UnknownGovIDTypeError) Is(target error) bool {
	return target == ErrUnknownGovIDType
}

var govIDTypeNames = map[GovIDType]string{
	GovIDTypeDriversLicense:        "drivers_license",
	GovIDTypePassport:              "passport",
	GovIDTypeSocialInsuranceNumber: "social_insurance_number",
}

// GovIDTypes returns the valid document types in ordinal order.
func GovIDTypes() []GovIDType {
	return []GovIDType{GovIDTypeDriversLicense, GovIDTypePassport, GovIDTypeSocialInsuranceNumber}
}

// ParseGovIDType converts a raw name into a GovIDType. Names must match
// exactly. Blank input yields GovIDTypeUnset without error so that validation
// can report it; any other unrecognised value is a hard input error.
func ParseGovIDType(raw string) (GovIDType, error) {
	if strings.TrimSpace(raw) == "" {
		return GovIDTypeUnset, nil
	}
	for t, name := range govIDTypeNames {
		if name == raw {
			return t, nil
		}
	}
	return GovIDTypeUnset, &UnknownGovIDTypeError{Raw: raw}
}

// GovIDTypeFromOrdinal maps the persisted ordinal back to a GovIDType.
func GovIDTypeFromOrdinal(ordinal int16) (GovIDType, error) {
	t := GovIDType(ordinal + 1)
	if !t.Valid() {
		return GovIDTypeUnset, &UnknownGovIDTypeError{Raw: strconv.Itoa(int(ordinal))}
	}
	return t, nil
}

// Valid reports whether t is one of the known document types.
func (t GovIDType) Valid() bool {
	_, ok := govIDTypeNames[t]
	return ok
}

// Ordinal is the persisted representation: 0 drivers_license, 1 passport,
// 2 social_insurance_number.
func (t GovIDType) Ordinal() int16 {
	return int16(t) - 1
}

func (t GovIDType) String() string {
	if name, ok := govIDTypeNames[t]; ok {
		return name
	}
	return ""
}

// MarshalText renders the type by name; an unset type renders as empty.
func (t GovIDType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText rejects unknown names before they can reach validation.
func (t *GovIDType) UnmarshalText(text []byte) error {
	parsed, err := ParseGovIDType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
