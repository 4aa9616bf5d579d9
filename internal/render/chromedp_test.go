package render

import (
	"context"
	"testing"

	"github.com/sqlsaturday/satops/internal/paper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&Request{HTML: "<p>x</p>", Paper: paper.Legal, Orientation: Landscape, Margin: 0.4})

	assert.Equal(t, 8.5, params.paperWidth)
	assert.Equal(t, 14.0, params.paperHeight)
	assert.Equal(t, 0.4, params.margin)
	assert.True(t, params.landscape)

	params = buildPrintParams(&Request{HTML: "<p>x</p>", Paper: paper.A4})
	assert.False(t, params.landscape)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty html", &Request{HTML: "  ", Paper: paper.Letter}, ErrCodeInvalidHTML},
		{"no paper", &Request{HTML: "<p>x</p>"}, ErrCodeInvalidPaperSize},
		{"margin too large", &Request{HTML: "<p>x</p>", Paper: paper.Letter, Margin: 5}, ErrCodeInvalidPaperSize},
		{"valid", &Request{HTML: "<p>x</p>", Paper: paper.Letter, Margin: 0.4}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var renderErr *Error
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}

func TestChromedpRenderer_RejectsBeforeLaunch(t *testing.T) {
	r := NewChromedpRenderer(nil)
	defer r.Close()

	_, err := r.Render(context.Background(), &Request{HTML: ""})
	assert.Error(t, err)
	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
}

func TestError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewError(ErrCodeRenderTimeout, "timed out", cause)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timed out: context deadline exceeded", err.Error())
}
