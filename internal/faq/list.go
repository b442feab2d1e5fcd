package faq

import (
	"bytes"
	"encoding/json"
	"fmt"

	"support-intake-go/internal/types"
)

// List is an ordered FAQ mapping. It encodes as a JSON object whose keys
// keep insertion order.
type List []types.FAQEntry

// Set overwrites the answer of an existing question in place, or appends.
func (l List) Set(question, answer string) List {
	for i := range l {
		if l[i].Question == question {
			l[i].Answer = answer
			return l
		}
	}
	return append(l, types.FAQEntry{Question: question, Answer: answer})
}

func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Question)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Answer)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object token by token so key order survives.
// A repeated key keeps its first position and its last value.
func (l *List) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("faq: expected JSON object, got %v", tok)
	}
	out := List{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("faq: expected string key, got %v", kt)
		}
		var answer string
		if err := dec.Decode(&answer); err != nil {
			return fmt.Errorf("faq: answer for %q: %w", key, err)
		}
		out = out.Set(key, answer)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}
