package decode

import "encoding/json"

// Flex wrapper types let wire structs stay declarative while all coercion
// rules remain in this package. Their UnmarshalJSON never returns an error.

// FlexInt is an int that tolerates string-encoded numbers.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt(Int(data))
	return nil
}

// FlexIntPtr is an optional int that tolerates string-encoded numbers.
// The zero value (absent field) has a nil Value.
type FlexIntPtr struct {
	Value *int
}

func (f *FlexIntPtr) UnmarshalJSON(data []byte) error {
	f.Value = IntPtr(data)
	return nil
}

// FlexBool is a bool that tolerates integer and string encodings.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = FlexBool(Bool(data))
	return nil
}

// FlexBoolPtr is an optional bool that tolerates integer and string encodings.
type FlexBoolPtr struct {
	Value *bool
}

func (f *FlexBoolPtr) UnmarshalJSON(data []byte) error {
	f.Value = BoolPtr(data)
	return nil
}

// FlexString is a string that tolerates number and bool encodings.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = FlexString(String(data))
	return nil
}

// FlexStringPtr is an optional string that tolerates number and bool encodings.
type FlexStringPtr struct {
	Value *string
}

func (f *FlexStringPtr) UnmarshalJSON(data []byte) error {
	f.Value = StringPtr(data)
	return nil
}

// FlexFloatPtr is an optional float64 that tolerates string-encoded numbers.
type FlexFloatPtr struct {
	Value *float64
}

func (f *FlexFloatPtr) UnmarshalJSON(data []byte) error {
	f.Value = FloatPtr(data)
	return nil
}

// FlexTags is a tag list that tolerates bare-string entries.
type FlexTags []RawTag

func (f *FlexTags) UnmarshalJSON(data []byte) error {
	*f = Tags(data)
	return nil
}

var (
	_ json.Unmarshaler = (*FlexInt)(nil)
	_ json.Unmarshaler = (*FlexIntPtr)(nil)
	_ json.Unmarshaler = (*FlexBool)(nil)
	_ json.Unmarshaler = (*FlexBoolPtr)(nil)
	_ json.Unmarshaler = (*FlexString)(nil)
	_ json.Unmarshaler = (*FlexStringPtr)(nil)
	_ json.Unmarshaler = (*FlexTags)(nil)
)
