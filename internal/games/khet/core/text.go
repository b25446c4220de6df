package core

import "fmt"

// Text encodings let boards and beam paths travel as JSON with readable
// names instead of enum numbers.

// MarshalText encodes the direction by name.
func (d Dir) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name or letter.
func (d *Dir) UnmarshalText(text []byte) error {
	v, ok := ParseDir(string(text))
	if !ok {
		return fmt.Errorf("core: unknown direction %q", text)
	}
	*d = v
	return nil
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	v, ok := ParseOrientation(string(text))
	if !ok {
		return fmt.Errorf("core: unknown orientation %q", text)
	}
	*o = v
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("core: unknown piece kind %q", text)
	}
	*k = v
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("core: unknown color %q", text)
	}
	*c = v
	return nil
}
