package ext

import (
	"fmt"
	"strconv"
)

// NullableBool is a bool that remembers whether it was ever set, for settings
// where "not configured" must fall through to a default.
type NullableBool struct {
	Value *bool
}

func NewNullableBool(v bool) NullableBool {
	return NullableBool{Value: &v}
}

func (nb *NullableBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	nb.Value = &v
	return nil
}

func (nb *NullableBool) String() string {
	if nb.Value == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", *nb.Value)
}

func (nb *NullableBool) Type() string {
	return "bool"
}

func (nb *NullableBool) Val(defaultValue bool) bool {
	if nb.Value == nil {
		return defaultValue
	}
	return *nb.Value
}

func (nb *NullableBool) IsBoolFlag() bool {
	return true
}

// Or returns nb when it is set, otherwise other.
func (nb NullableBool) Or(other NullableBool) NullableBool {
	if nb.Value != nil {
		return nb
	}
	return other
}

func (nb NullableBool) IsZero() bool {
	return nb.Value == nil
}

func (nb NullableBool) MarshalYAML() (interface{}, error) {
	if nb.Value == nil {
		return nil, nil
	}
	return *nb.Value, nil
}

func (nb *NullableBool) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v *bool
	if err := unmarshal(&v); err != nil {
		return err
	}
	nb.Value = v
	return nil
}

// Negated is a flag value that stores the opposite of what it is given in the
// underlying NullableBool, so "--exclude-x" and "--include-x" can share one setting.
type Negated struct {
	Target *NullableBool
}

func (n Negated) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	return n.Target.Set(strconv.FormatBool(!v))
}

func (n Negated) String() string {
	if n.Target == nil || n.Target.Value == nil {
		return "<nil>"
	}
	return strconv.FormatBool(!*n.Target.Value)
}

func (n Negated) Type() string {
	return "bool"
}

func (n Negated) IsBoolFlag() bool {
	return true
}
