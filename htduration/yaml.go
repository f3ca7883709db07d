package htduration

import "gopkg.in/yaml.v3"

// MarshalYAML implements gopkg.in/yaml.v3's Marshaler so a Duration field
// serializes as "5m30s" rather than an integer count of nanoseconds.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements gopkg.in/yaml.v3's Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
