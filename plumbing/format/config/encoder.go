package config

import (
	"fmt"
	"io"
	"strings"
)

// Encoder writes a *Config to an underlying io.Writer, in git's gitconfig
// INI-like format.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes cfg to the underlying writer.
func (e *Encoder) Encode(cfg *Config) error {
	for _, s := range cfg.Sections {
		if err := e.encodeSection(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSection(s *Section) error {
	if len(s.Options) > 0 {
		if err := e.printf("[%s]\n", s.Name); err != nil {
			return err
		}
		if err := e.encodeOptions(s.Options); err != nil {
			return err
		}
	}

	for _, ss := range s.Subsections {
		if err := e.encodeSubsection(s.Name, ss); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) encodeSubsection(section string, ss *Subsection) error {
	if err := e.printf("[%s %s]\n", section, encodeSubsectionName(ss.Name)); err != nil {
		return err
	}
	return e.encodeOptions(ss.Options)
}

func (e *Encoder) encodeOptions(opts Options) error {
	for _, o := range opts {
		if err := e.printf("\t%s = %s\n", o.Key, encodeValue(o.Value)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(e.w, format, args...)
	return err
}

func encodeSubsectionName(name string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
}

func needsQuote(value string) bool {
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, " ") || strings.HasSuffix(value, " ") {
		return true
	}
	return strings.ContainsAny(value, "#\";\\")
}

func encodeValue(value string) string {
	if !needsQuote(value) {
		return value
	}

	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}
