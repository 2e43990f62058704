package folio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonLine builds a single line JSON object with its fields in the order they
// are appended. Its zero value is ready to use.
type jsonLine struct {
	bytes.Buffer
	err error
}

// Append adds a key-value pair, the value is marshaled with json.Marshal.
func (w *jsonLine) Append(key string, value any) *jsonLine {
	if w.err != nil {
		return w
	}
	b, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	if w.Len() > 0 {
		w.WriteByte(',')
	}
	fmt.Fprintf(w, "%q:", key)
	w.Write(b)
	return w
}

// Optional appends a string only if it is not empty.
func (w *jsonLine) Optional(key string, value string) *jsonLine {
	if value == "" {
		return w
	}
	return w.Append(key, value)
}

// Money appends the value under key and its currency under "currency".
func (w *jsonLine) Money(key string, m Money) *jsonLine {
	return w.Append(key, m.Value()).Append("currency", m.Currency())
}

// MarshalJSON wraps the fields in braces.
func (w *jsonLine) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	res := make([]byte, 0, w.Len()+2)
	res = append(res, '{')
	res = append(res, w.Bytes()...)
	return append(res, '}'), nil
}
