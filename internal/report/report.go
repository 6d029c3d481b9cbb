package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/docrank/pkg/types"
)

const (
	// DefaultTopK is the number of sections reported when none is requested
	DefaultTopK = 5

	// MaxTitleLength bounds section_title, in characters
	MaxTitleLength = 100

	// MaxExcerptLength bounds refined_text, in characters
	MaxExcerptLength = 1500

	// TimestampLayout is the processing_timestamp format (UTC, microseconds)
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// ErrInvalidTopK is returned for a top-k below 1
var ErrInvalidTopK = errors.New("top_k must be >= 1")

// Report is the JSON document written for one run
type Report struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// Metadata records the run inputs
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked section
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is the excerpt for the section at the same index
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Assembler turns ranked sections into a Report
type Assembler struct {
	// Now supplies the processing timestamp
	Now func() time.Time
}

// NewAssembler returns an assembler that stamps reports with the wall clock
func NewAssembler() *Assembler {
	return &Assembler{Now: time.Now}
}

// Assemble takes the first min(topK, len(ranked)) sections, which must
// already be sorted, and numbers them from 1. Both arrays are always non-nil.
func (a *Assembler) Assemble(inputDocs []string, persona, job string, ranked []types.Section, topK int) (*Report, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}

	now := time.Now
	if a != nil && a.Now != nil {
		now = a.Now
	}

	docs := make([]string, len(inputDocs))
	copy(docs, inputDocs)

	n := min(topK, len(ranked))
	r := &Report{
		Metadata: Metadata{
			InputDocuments:      docs,
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: now().UTC().Format(TimestampLayout),
		},
		ExtractedSections:  make([]ExtractedSection, 0, n),
		SubsectionAnalysis: make([]SubsectionAnalysis, 0, n),
	}

	for i, s := range ranked[:n] {
		r.ExtractedSections = append(r.ExtractedSections, ExtractedSection{
			Document:       s.DocumentID,
			SectionTitle:   Title(s.Text),
			ImportanceRank: i + 1,
			PageNumber:     s.PageNumber,
		})
		r.SubsectionAnalysis = append(r.SubsectionAnalysis, SubsectionAnalysis{
			Document:    s.DocumentID,
			RefinedText: Excerpt(s.Text),
			PageNumber:  s.PageNumber,
		})
	}

	return r, nil
}

// Title is the first line of text cut to MaxTitleLength characters
func Title(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return truncate(line, MaxTitleLength)
}

// Excerpt is text cut to MaxExcerptLength characters
func Excerpt(text string) string {
	return truncate(text, MaxExcerptLength)
}

// truncate cuts s to at most n code points
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
