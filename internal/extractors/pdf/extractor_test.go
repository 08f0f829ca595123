package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, "pdf", e.Name())
	assert.Equal(t, []string{"application/pdf"}, e.SupportedMediaTypes())
}

func TestExtract_Empty(t *testing.T) {
	text, err := New().Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_NotAPDF(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"plain text", []byte("this is not a pdf document at all")},
		{"truncated header", []byte("%PDF-1.4\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := New().Extract(context.Background(), tt.content)
			assert.Error(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
}
