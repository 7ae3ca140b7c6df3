package config

import (
	"fmt"
	"strings"
)

func ci(s string) string {
	return strings.ToLower(s)
}

// Sections is a list of sections.
type Sections []*Section

// Section is a section of a config file, e.g. [core] or [remote "origin"].
// Section names are matched case-insensitively.
type Section struct {
	Name        string
	Options     Options
	Subsections Subsections
}

// IsName returns true if the section's name matches the given name,
// compared case-insensitively.
func (s *Section) IsName(name string) bool {
	return ci(s.Name) == ci(name)
}

// Subsection returns the subsection with the given name, creating it if it
// does not already exist.
func (s *Section) Subsection(name string) *Subsection {
	for _, ss := range s.Subsections {
		if ss.IsName(name) {
			return ss
		}
	}

	ss := &Subsection{Name: name}
	s.Subsections = append(s.Subsections, ss)
	return ss
}

// HasSubsection returns true if the section has a subsection with the given
// name.
func (s *Section) HasSubsection(name string) bool {
	for _, ss := range s.Subsections {
		if ss.IsName(name) {
			return true
		}
	}
	return false
}

// RemoveSubsection removes the named subsection, if present.
func (s *Section) RemoveSubsection(name string) *Section {
	result := Subsections{}
	for _, ss := range s.Subsections {
		if !ss.IsName(name) {
			result = append(result, ss)
		}
	}
	s.Subsections = result
	return s
}

// Option returns the value of the last option with the given key, or "" if
// there is none.
func (s *Section) Option(key string) string {
	return s.Options.withLast(key)
}

// GetOption is an alias for Option.
func (s *Section) GetOption(key string) string {
	return s.Option(key)
}

// OptionAll returns the values of every option with the given key, in the
// order they appear.
func (s *Section) OptionAll(key string) []string {
	return s.Options.GetAll(key)
}

// GetAllOptions is an alias for OptionAll.
func (s *Section) GetAllOptions(key string) []string {
	return s.OptionAll(key)
}

// HasOption returns true if the section has an option with the given key.
func (s *Section) HasOption(key string) bool {
	return s.Options.Has(key)
}

// AddOption appends a new key/value option, even if one with the same key
// already exists.
func (s *Section) AddOption(key, value string) *Section {
	s.Options = append(s.Options, &Option{Key: key, Value: value})
	return s
}

// SetOption sets the option with the given key to value. An option that
// already holds value keeps its position; every other option with the key
// is removed, and if none held value a new option is appended at the end.
func (s *Section) SetOption(key, value string) *Section {
	result, kept := Options{}, false
	for _, o := range s.Options {
		if o.IsKey(key) && (kept || o.Value != value) {
			continue
		}
		kept = kept || o.IsKey(key)
		result = append(result, o)
	}
	s.Options = result
	if !kept {
		return s.AddOption(key, value)
	}
	return s
}

// RemoveOption removes every option with the given key.
func (s *Section) RemoveOption(key string) *Section {
	result := Options{}
	for _, o := range s.Options {
		if !o.IsKey(key) {
			result = append(result, o)
		}
	}
	s.Options = result
	return s
}

func (s *Section) GoString() string {
	return fmt.Sprintf("&config.Section{Name:%q, Options:%s, Subsections:%s}",
		s.Name, s.Options.GoString(), s.Subsections.GoString())
}

func (ss Sections) GoString() string {
	var out string
	for i, s := range ss {
		if i != 0 {
			out += ", "
		}
		out += s.GoString()
	}
	return out
}
