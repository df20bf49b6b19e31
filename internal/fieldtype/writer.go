package fieldtype

// StoredValue is a value read back from stored fields: a string, or absent.
type StoredValue struct {
	s     string
	valid bool
}

// StoredString wraps a stored string.
func StoredString(s string) StoredValue { return StoredValue{s: s, valid: true} }

// AbsentStored is the stored value of a field the document does not have.
func AbsentStored() StoredValue { return StoredValue{} }

// Get returns the string and whether it is present.
func (v StoredValue) Get() (string, bool) { return v.s, v.valid }

// ResponseWriter is the external response encoding.
type ResponseWriter interface {
	// WriteStr writes a string value. exact marks it as an untokenized value the
	// encoder must emit character for character.
	WriteStr(name, value string, exact bool) error
	// WriteNull writes an explicit absent value.
	WriteNull(name string) error
}
