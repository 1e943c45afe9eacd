package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "JP"

const MonthLayout = "2006-01"

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

// ParseTargetMonth validates the "YYYY-MM" format and returns the first
// instant of that month (UTC).
func ParseTargetMonth(targetMonth string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(targetMonth))
	if err != nil {
		return time.Time{}, errors.New("target month must be in YYYY-MM format")
	}
	return t, nil
}

// MonthRange returns [start, end) bounds of a target month for date-column
// queries.
func MonthRange(targetMonth string) (time.Time, time.Time, error) {
	start, err := ParseTargetMonth(targetMonth)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// PreviousMonth returns the month immediately before the given "YYYY-MM".
func PreviousMonth(targetMonth string) (string, error) {
	start, err := ParseTargetMonth(targetMonth)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, -1, 0).Format(MonthLayout), nil
}

// MonthsBack lists the n months ending at targetMonth (inclusive), oldest first.
func MonthsBack(targetMonth string, n int) ([]string, error) {
	end, err := ParseTargetMonth(targetMonth)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	months := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, end.AddDate(0, -i, 0).Format(MonthLayout))
	}
	return months, nil
}

func ProcessValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			errorsMap[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return errorsMap
}

func NewTrue() *bool {
	b := true
	return &b
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}
