package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoBirthDate converts a roster DOB ("M/D/YYYY" or "MM/DD/YYYY") into the
// zero-padded "YYYY-MM-DD" form the exchange expects in birthdate queries.
func isoBirthDate(dob string) (string, error) {
	parts := strings.Split(strings.TrimSpace(dob), "/")
	if len(parts) != 3 {
		return "", &MappingError{Field: "DOB", Detail: fmt.Sprintf("expected MM/DD/YYYY, got %q", dob)}
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", &MappingError{Field: "DOB", Detail: fmt.Sprintf("bad month in %q", dob)}
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", &MappingError{Field: "DOB", Detail: fmt.Sprintf("bad day in %q", dob)}
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", &MappingError{Field: "DOB", Detail: fmt.Sprintf("bad year in %q", dob)}
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

func parseDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	var t time.Time
	var err error
	for _, layout := range layouts {
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}
