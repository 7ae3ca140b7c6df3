package config

import "fmt"

// Option is a key/value pair inside a Section or Subsection.
type Option struct {
	Key   string
	Value string
}

// Options is a list of options.
type Options []*Option

// IsKey returns true if the option's key matches name. Option keys are
// matched case-insensitively, as git does.
func (o *Option) IsKey(name string) bool {
	return ci(o.Key) == ci(name)
}

func (o *Option) GoString() string {
	return fmt.Sprintf("&config.Option{Key:%q, Value:%q}", o.Key, o.Value)
}

func (opts Options) GoString() string {
	var s string
	for i, o := range opts {
		if i != 0 {
			s += ", "
		}
		s += o.GoString()
	}
	return s
}

// withLast returns the value of the last option with the given key, or ""
// if none is found.
func (opts Options) withLast(key string) string {
	for i := len(opts) - 1; i >= 0; i-- {
		if opts[i].IsKey(key) {
			return opts[i].Value
		}
	}
	return ""
}

// GetAll returns the values of all options with the given key, in file
// order.
func (opts Options) GetAll(key string) []string {
	result := []string{}
	for _, o := range opts {
		if o.IsKey(key) {
			result = append(result, o.Value)
		}
	}
	return result
}

// Has returns true if any option in the list has the given key.
func (opts Options) Has(key string) bool {
	for _, o := range opts {
		if o.IsKey(key) {
			return true
		}
	}
	return false
}
