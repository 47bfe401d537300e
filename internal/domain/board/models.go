package board

import (
	"fmt"
	"strings"
)

// Name of a board. Boards namespace tasks; each board is backed by its own
// index, so names carry the same restrictions as index names.
type Name string

var invalidChars = `\/*?"<>| ,#:`

var illegalPrefixes = []string{
	"_",
	"-",
	"+",
}

var illegals = []string{
	".",
	"..",
}

// NameFromString takes a string and returns a board Name if valid, otherwise returns an InvalidName error.
//
// The restrictions are those of ES index names, since a board maps one to one
// onto an index.
func NameFromString(s string) (*Name, error) {
	var errs []error

	if len(s) == 0 {
		errs = append(errs, fmt.Errorf("empty string"))
	}
	if strings.ContainsAny(s, invalidChars) {
		errs = append(errs, fmt.Errorf("contains invalid chars [%v]", invalidChars))
	}
	for _, illegalPrefix := range illegalPrefixes {
		if strings.HasPrefix(s, illegalPrefix) {
			errs = append(errs, fmt.Errorf("starts with illegal char [%v]", illegalPrefix))
		}
	}
	for _, illegalStr := range illegals {
		if s == illegalStr {
			errs = append(errs, fmt.Errorf("equal to illegal string sequence [%v]", illegalStr))
		}
	}
	if s != strings.ToLower(s) {
		errs = append(errs, fmt.Errorf("not lower case [%v]", s))
	}
	if len(errs) == 0 {
		b := Name(s)
		return &b, nil
	} else {
		return nil, &InvalidName{
			Errors: errs,
		}
	}

}

type InvalidName struct {
	Errors []error
}

func (i *InvalidName) Error() string {
	return fmt.Sprintf("Illegal board name: [%v]", i.Errors)
}
