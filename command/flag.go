package command

import (
	"fmt"
	"strings"
)

// EnumValue is a cli.Generic flag value restricted to a fixed set of
// strings, the same enum-flag pattern the reference CLI uses for its
// own constrained string flags (log level, addressing style).
type EnumValue struct {
	Enum     []string
	Default  string
	selected string
}

func (e *EnumValue) Set(value string) error {
	for _, allowed := range e.Enum {
		if allowed == value {
			e.selected = value
			return nil
		}
	}
	return fmt.Errorf("allowed values: [%s]", strings.Join(e.Enum, ", "))
}

func (e *EnumValue) String() string {
	if e.selected == "" {
		return e.Default
	}
	return e.selected
}

func (e *EnumValue) Get() interface{} {
	return e.String()
}
