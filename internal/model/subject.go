package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Subject is the closed set of subjects a study group can be about.
// The numeric values are persisted; the names are the wire form.
type Subject int

const (
	SubjectMath      Subject = 1
	SubjectChemistry Subject = 2
	SubjectPhysics   Subject = 3
)

// ErrUnknownSubject is returned when a string does not name a subject.
var ErrUnknownSubject = errors.New("unknown subject")

var subjectNames = map[Subject]string{
	SubjectMath:      "Math",
	SubjectChemistry: "Chemistry",
	SubjectPhysics:   "Physics",
}

// Subjects returns every subject in declaration order.
func Subjects() []Subject {
	return []Subject{SubjectMath, SubjectChemistry, SubjectPhysics}
}

// SubjectNames returns the wire names of every subject in declaration order.
func SubjectNames() []string {
	all := Subjects()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.String()
	}
	return names
}

// ParseSubject converts a wire name into a Subject. Matching is exact and case-sensitive.
func ParseSubject(name string) (Subject, error) {
	for s, n := range subjectNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownSubject, name, strings.Join(SubjectNames(), ","))
}

// Valid reports whether s is one of the declared subjects.
func (s Subject) Valid() bool {
	_, ok := subjectNames[s]
	return ok
}

func (s Subject) String() string {
	if n, ok := subjectNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Subject(%d)", int(s))
}

// MarshalJSON writes the subject name.
func (s Subject) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubject, int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON reads a subject name.
func (s *Subject) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSubject(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
