package enumble

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("invalid enumble declaration")

	// ErrDuplicateEntry is matched by every *DuplicateEntryError
	ErrDuplicateEntry = errors.New("duplicate enumble")

	// ErrNotResolved is matched by every *ResolutionError
	ErrNotResolved = errors.New("enumble not found")

	// ErrNoSuchMember is returned by Registry.Member for unknown names
	ErrNoSuchMember = errors.New("no such enumble member")

	// ErrFrozen is returned when declaring into a frozen registry
	ErrFrozen = errors.New("registry is frozen")
)

// ValidationError reports malformed declaration input
type ValidationError struct {
	Model   string
	Name    Name
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	prefix := "enumble"
	if e.Model != "" {
		prefix = e.Model + " enumble"
	}
	if e.Name != "" {
		prefix += " " + string(e.Name)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateEntryError reports a declaration that collides with an existing entry
type DuplicateEntryError struct {
	Model    string
	Entry    *Entry
	Existing *Entry
}

// Error implements the error interface
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s: duplicate enumble %s (id %d, label %q) collides with %s (id %d, label %q)",
		e.Model,
		e.Entry.Name(), e.Entry.ID(), e.Entry.Label(),
		e.Existing.Name(), e.Existing.ID(), e.Existing.Label())
}

// Is reports whether target is ErrDuplicateEntry
func (e *DuplicateEntryError) Is(target error) bool {
	return target == ErrDuplicateEntry
}

// ResolutionError reports a key that did not resolve to any entry
type ResolutionError struct {
	Model string
	Key   Key
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to find a %s enumble with %s", e.Model, e.Key)
}

// Is reports whether target is ErrNotResolved
func (e *ResolutionError) Is(target error) bool {
	return target == ErrNotResolved
}

// IsValidation returns true if err is a declaration validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDuplicate returns true if err is a duplicate entry error
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsNotResolved returns true if err is a resolution error
func IsNotResolved(err error) bool {
	return errors.Is(err, ErrNotResolved)
}
