package types

import (
	"fmt"
	"strings"
)

// Section is one page of one document. Its identity is (DocumentID, PageNumber).
type Section struct {
	DocumentID string
	PageNumber int // 1-based
	Text       string
	Score      float64 // Set once by the ranking engine
}

// NewSection builds a section from raw page text, trimming surrounding whitespace.
func NewSection(documentID string, page int, raw string) (Section, error) {
	s := Section{
		DocumentID: documentID,
		PageNumber: page,
		Text:       strings.TrimSpace(raw),
	}
	if err := s.Validate(); err != nil {
		return Section{}, err
	}
	return s, nil
}

// Validate checks the section invariants
func (s Section) Validate() error {
	if s.DocumentID == "" {
		return ErrMissingDocument
	}

	if s.PageNumber < 1 {
		return ErrInvalidPage
	}

	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptySection
	}

	return nil
}

// Key returns "<document>#<page>".
func (s Section) Key() string {
	return fmt.Sprintf("%s#%d", s.DocumentID, s.PageNumber)
}

// Query is the persona and job combined into one text for embedding.
type Query struct {
	Persona      string
	Job          string
	CombinedText string
}

// QuerySeparator joins persona and job in CombinedText
const QuerySeparator = ". Task: "

// BuildQuery trims persona and job and rejects either one when empty.
// The period after the persona is always added, even if the persona already ends with one.
func BuildQuery(persona, job string) (Query, error) {
	persona = strings.TrimSpace(persona)
	job = strings.TrimSpace(job)

	if persona == "" {
		return Query{}, &InputError{Field: "persona", Reason: "is empty"}
	}
	if job == "" {
		return Query{}, &InputError{Field: "job", Reason: "is empty"}
	}

	return Query{
		Persona:      persona,
		Job:          job,
		CombinedText: persona + QuerySeparator + job,
	}, nil
}
