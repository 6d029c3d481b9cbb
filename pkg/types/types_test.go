package types

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		persona string
		job     string
		want    string
		wantErr string
	}{
		{
			name:    "combines persona and job",
			persona: "Travel Planner",
			job:     "Plan a 4-day trip",
			want:    "Travel Planner. Task: Plan a 4-day trip",
		},
		{
			name:    "trims whitespace",
			persona: "  HR professional\n",
			job:     "\tCreate fillable forms  ",
			want:    "HR professional. Task: Create fillable forms",
		},
		{
			name:    "period is always added",
			persona: "Chef.",
			job:     "Cook",
			want:    "Chef.. Task: Cook",
		},
		{
			name:    "empty persona",
			persona: "   ",
			job:     "Cook",
			wantErr: "persona",
		},
		{
			name:    "empty job",
			persona: "Chef",
			job:     "",
			wantErr: "job",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := BuildQuery(tt.persona, tt.job)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)

				var inputErr *InputError
				require.True(t, errors.As(err, &inputErr))
				assert.Equal(t, tt.wantErr, inputErr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, q.CombinedText)
		})
	}
}

func TestNewSection(t *testing.T) {
	s, err := NewSection("a.pdf", 2, "  Hello\nworld \n")
	require.NoError(t, err)
	assert.Equal(t, "Hello\nworld", s.Text)
	assert.Equal(t, "a.pdf#2", s.Key())
	assert.Zero(t, s.Score)

	_, err = NewSection("a.pdf", 1, " \n\t ")
	assert.ErrorIs(t, err, ErrEmptySection)

	_, err = NewSection("a.pdf", 0, "text")
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = NewSection("", 1, "text")
	assert.ErrorIs(t, err, ErrMissingDocument)
}

func TestErrorWrapping(t *testing.T) {
	parseErr := &DocumentParseError{Document: "bad.pdf", Stage: StageOpen, Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, parseErr, io.ErrUnexpectedEOF)
	assert.Contains(t, parseErr.Error(), "bad.pdf")

	embErr := &EmbeddingError{Stage: StageQuery, Err: io.EOF}
	assert.ErrorIs(t, embErr, ErrEmbeddingFailed)
	assert.ErrorIs(t, embErr, io.EOF)
	assert.Contains(t, embErr.Error(), "query")
}
