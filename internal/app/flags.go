package app

import (
	"fmt"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// formatValue implements pflag.Value to provide a custom type name in help text
// and validation for output formats.
type formatValue string

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(v string) error {
	if v != FormatJSON && v != FormatText {
		return fmt.Errorf("must be '%s' or '%s'", FormatText, FormatJSON)
	}
	*f = formatValue(v)
	return nil
}

func (f *formatValue) Type() string {
	return "<format>"
}

// pathValue implements pflag.Value to provide a custom type name in help text.
type pathValue string

func (p *pathValue) String() string {
	return string(*p)
}

func (p *pathValue) Set(v string) error {
	if v == "" {
		return fmt.Errorf("must not be empty")
	}
	*p = pathValue(v)
	return nil
}

func (p *pathValue) Type() string {
	return "<path>"
}

// optionalBool implements pflag.Value for a boolean flag whose absence must be
// distinguishable from false. Register it with NoOptDefVal set to "true".
type optionalBool struct {
	value *bool
}

func (o *optionalBool) String() string {
	if o.value == nil {
		return ""
	}
	return fmt.Sprint(*o.value)
}

func (o *optionalBool) Set(v string) error {
	var b bool
	switch v {
	case "true", "1":
		b = true
	case "false", "0":
	default:
		return fmt.Errorf("must be 'true' or 'false'")
	}
	o.value = &b
	return nil
}

func (o *optionalBool) Type() string {
	return "bool"
}
