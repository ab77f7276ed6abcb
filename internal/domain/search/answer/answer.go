// Package answer turns raw language-model output into a tagged parse result.
// The decision between structured, unstructured and failed output is made once here.
package answer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a parse outcome.
type Kind int

// Parse outcomes.
const (
	// ParseFailure means a JSON-looking span was found but could not be decoded.
	ParseFailure Kind = iota
	// Unstructured means the output holds no JSON object and is used verbatim.
	Unstructured
	// Structured means the output decoded into an answer with references.
	Structured
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	case Unstructured:
		return "unstructured"
	default:
		return "parse_failure"
	}
}

// Reference is one model-asserted result. It is untrusted until reconciled.
type Reference struct {
	ID        string
	Type      string
	Title     string
	Relevance *float64 // model-asserted relevance, nil when absent
	Reason    string
}

// Parsed is the tagged result of Parse.
type Parsed struct {
	kind       Kind
	answer     string
	references []Reference
	err        error
}

// Kind returns the outcome tag.
func (p *Parsed) Kind() Kind { return p.kind }

// Answer returns the answer text (Structured and Unstructured only).
func (p *Parsed) Answer() string { return p.answer }

// References returns the model's results (Structured only).
func (p *Parsed) References() []Reference { return p.references }

// Err returns the decoding error (ParseFailure only).
func (p *Parsed) Err() error { return p.err }

// Parse scans raw for the first '{' through the last '}' and decodes that span.
func Parse(raw string) Parsed {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return Parsed{kind: Unstructured, answer: raw, references: []Reference{}}
	}

	var body wireAnswer
	if err := json.Unmarshal([]byte(raw[start:end+1]), &body); err != nil {
		return Parsed{kind: ParseFailure, err: fmt.Errorf("decode model output: %w", err)}
	}
	if body.Answer == nil {
		return Parsed{kind: ParseFailure, err: errors.New("model output has no string answer")}
	}

	refs := make([]Reference, 0, len(body.Results))
	for _, r := range body.Results {
		refs = append(refs, Reference{
			ID:        string(r.ID),
			Type:      r.Type,
			Title:     r.Title,
			Relevance: r.RelevanceScore.ptr(),
			Reason:    r.Reason,
		})
	}

	return Parsed{kind: Structured, answer: *body.Answer, references: refs}
}

type wireAnswer struct {
	Answer  *string         `json:"answer"`
	Results []wireReference `json:"results"`
}

type wireReference struct {
	ID             flexString `json:"id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	RelevanceScore flexFloat  `json:"relevanceScore"`
	Reason         string     `json:"reason"`
}

// flexString accepts a JSON string or number; models emit numeric ids freely.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err //nolint:wrapcheck // json.Unmarshaler contract
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number or numeric string and remembers whether it was set.
type flexFloat struct {
	v   float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err //nolint:wrapcheck // json.Unmarshaler contract
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// A non-numeric score is treated as absent.
			return nil
		}
		f.v, f.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &f.v); err != nil {
		return fmt.Errorf("relevanceScore must be a number: %w", err)
	}
	f.set = true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}
