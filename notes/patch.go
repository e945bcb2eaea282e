package notes

import "encoding/json"

// Optional distinguishes a field absent from a request body from a field
// explicitly present, including present-as-null. Absent fields are left
// unchanged on update; present fields overwrite.
type Optional[T any] struct {
	// Set reports whether the field appeared in the request body at all.
	Set bool

	// Value is the decoded field value. An explicit JSON null decodes to
	// the zero value (nil for pointer and map types).
	Value T
}

// UnmarshalJSON records presence and decodes the value. It is only invoked
// by encoding/json for fields that actually appear in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Patch carries the fields of a partial note update. Metadata is
// shallow-merged into the stored metadata rather than replacing it; all other
// present fields overwrite the stored field. An explicit null PasswordHash
// clears the stored hash.
type Patch struct {
	Title        Optional[string]         `json:"title"`
	Content      Optional[string]         `json:"content"`
	Encrypted    Optional[bool]           `json:"encrypted"`
	PasswordHash Optional[*string]        `json:"passwordHash"`
	Metadata     Optional[map[string]any] `json:"metadata"`
}
