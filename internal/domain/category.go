package domain

import (
	"fmt"
	"strings"
)

// Category is one of the five traveler classes a tour plan prices separately.
type Category int

const (
	Adult Category = iota
	Child
	Infant
	Youth
	Student
)

// Categories lists every category in display order.
var Categories = []Category{Adult, Child, Infant, Youth, Student}

func (c Category) String() string {
	switch c {
	case Adult:
		return "adults"
	case Child:
		return "children"
	case Infant:
		return "infants"
	case Youth:
		return "youth"
	case Student:
		return "students"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Label is the human-readable singular used on documents.
func (c Category) Label() string {
	switch c {
	case Adult:
		return "Adult"
	case Child:
		return "Child"
	case Infant:
		return "Infant"
	case Youth:
		return "Youth"
	case Student:
		return "EU Student"
	default:
		return c.String()
	}
}

// CountKey is the booking payload key holding this category's count.
func (c Category) CountKey() string {
	switch c {
	case Adult:
		return "num_adults"
	case Child:
		return "num_children"
	case Infant:
		return "num_infants"
	case Youth:
		return "num_youth"
	case Student:
		return "num_student_eu"
	default:
		return ""
	}
}

// Min is the smallest count allowed: a booking always carries one adult.
func (c Category) Min() int {
	if c == Adult {
		return 1
	}
	return 0
}

func (c Category) Valid() bool {
	return c >= Adult && c <= Student
}

// ParseCategory accepts the plural name, the singular, or the payload count key.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adults", "adult", "num_adults":
		return Adult, nil
	case "children", "child", "num_children":
		return Child, nil
	case "infants", "infant", "num_infants":
		return Infant, nil
	case "youth", "youths", "num_youth":
		return Youth, nil
	case "students", "student", "student_eu", "num_student_eu":
		return Student, nil
	}
	return 0, ValidationError{Field: "category", Msg: fmt.Sprintf("unknown category %q", s)}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
