package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fixed cache document fields.
const (
	FieldQuizID             = "quiz_id"
	FieldQuizName           = "quiz_name"
	FieldQuizDescription    = "quiz_description"
	FieldCompanyID          = "company_id"
	FieldCompanyName        = "company_name"
	FieldCompanyDescription = "company_description"
	FieldUserID             = "user_id"
	FieldUserEmail          = "user_email"
	FieldScore              = "score"
)

// Per-question cache document fields.
func QuestionTextField(questionID int64) string {
	return "question_text_" + strconv.FormatInt(questionID, 10)
}

func ProvidedOptionField(questionID int64) string {
	return "provided_option_" + strconv.FormatInt(questionID, 10)
}

func IsCorrectField(questionID int64) string {
	return "is_correct_" + strconv.FormatInt(questionID, 10)
}

// CacheEntry is a flat JSON document. Key order survives encoding and
// decoding, which lets CSV export dump the document without a schema.
type CacheEntry struct {
	keys   []string
	values map[string]json.RawMessage
}

// Set encodes v and stores it under key. A new key is appended; an existing
// key keeps its position.
func (e *CacheEntry) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e.setRaw(key, raw)
	return nil
}

func (e *CacheEntry) setRaw(key string, raw json.RawMessage) {
	if e.values == nil {
		e.values = make(map[string]json.RawMessage)
	}
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = raw
}

// Keys returns the document keys in order.
func (e CacheEntry) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

func (e CacheEntry) Len() int { return len(e.keys) }

// Raw returns the encoded value stored under key.
func (e CacheEntry) Raw(key string) (json.RawMessage, bool) {
	raw, ok := e.values[key]
	return raw, ok
}

// Int decodes an integer field.
func (e CacheEntry) Int(key string) (int64, bool) {
	raw, ok := e.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float decodes a numeric field.
func (e CacheEntry) Float(key string) (float64, bool) {
	raw, ok := e.values[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text renders a field as a bare cell value: strings unquoted, null empty,
// numbers and booleans exactly as stored.
func (e CacheEntry) Text(key string) string {
	raw, ok := e.values[key]
	if !ok || string(raw) == "null" {
		return ""
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Identity returns the (quiz, user, company) triple the entry is keyed by.
func (e CacheEntry) Identity() (quizID, userID, companyID int64, err error) {
	var ok bool
	if quizID, ok = e.Int(FieldQuizID); !ok {
		return 0, 0, 0, ErrMalformedEntry
	}
	if userID, ok = e.Int(FieldUserID); !ok {
		return 0, 0, 0, ErrMalformedEntry
	}
	if companyID, ok = e.Int(FieldCompanyID); !ok {
		return 0, 0, 0, ErrMalformedEntry
	}
	return quizID, userID, companyID, nil
}

func (e CacheEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(e.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("cache entry: expected object, got %v", tok)
	}
	e.keys = nil
	e.values = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("cache entry: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		e.setRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
