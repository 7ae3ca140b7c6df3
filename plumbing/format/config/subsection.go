package config

import (
	"fmt"
	"slices"
)

// Subsections is a list of subsections.
type Subsections []*Subsection

// Subsection is a named subdivision of a Section, e.g. the "origin" in
// [remote "origin"]. Unlike section names, subsection names are matched
// case-sensitively, as git does.
type Subsection struct {
	Name    string
	Options Options
}

// IsName returns true if the subsection's name matches the given name,
// compared case-sensitively.
func (s *Subsection) IsName(name string) bool {
	return s.Name == name
}

// Option returns the value of the last option with the given key, or "" if
// there is none.
func (s *Subsection) Option(key string) string {
	return s.Options.withLast(key)
}

// GetOption is an alias for Option.
func (s *Subsection) GetOption(key string) string {
	return s.Option(key)
}

// OptionAll returns the values of every option with the given key, in the
// order they appear.
func (s *Subsection) OptionAll(key string) []string {
	return s.Options.GetAll(key)
}

// GetAllOptions is an alias for OptionAll.
func (s *Subsection) GetAllOptions(key string) []string {
	return s.OptionAll(key)
}

// HasOption returns true if the subsection has an option with the given key.
func (s *Subsection) HasOption(key string) bool {
	return s.Options.Has(key)
}

// AddOption appends a new key/value option, even if one with the same key
// already exists.
func (s *Subsection) AddOption(key, value string) *Subsection {
	s.Options = append(s.Options, &Option{Key: key, Value: value})
	return s
}

// SetOption sets the given key to the given values, one option per value.
// Options that already hold one of the values keep their position; every
// other option with the key is removed, and the values not yet present are
// appended at the end in the order given.
func (s *Subsection) SetOption(key string, value ...string) *Subsection {
	result, kept := Options{}, map[string]bool{}
	for _, o := range s.Options {
		if o.IsKey(key) && (kept[o.Value] || !slices.Contains(value, o.Value)) {
			continue
		}
		if o.IsKey(key) {
			kept[o.Value] = true
		}
		result = append(result, o)
	}
	for _, v := range value {
		if !kept[v] {
			result = append(result, &Option{Key: key, Value: v})
		}
	}
	s.Options = result
	return s
}

// RemoveOption removes every option with the given key.
func (s *Subsection) RemoveOption(key string) *Subsection {
	result := Options{}
	for _, o := range s.Options {
		if !o.IsKey(key) {
			result = append(result, o)
		}
	}
	s.Options = result
	return s
}

func (s *Subsection) GoString() string {
	return fmt.Sprintf("&config.Subsection{Name:%q, Options:%s}", s.Name, s.Options.GoString())
}

func (ss Subsections) GoString() string {
	var out string
	for i, s := range ss {
		if i != 0 {
			out += ", "
		}
		out += s.GoString()
	}
	return out
}
