package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "flush limit",
			code:    CodeFlushLimit,
			wantMsg: "Flush did not settle",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config parse",
			code:    CodeConfigParse,
			wantMsg: "Invalid YAML in configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestNewReturnsFreshValues(t *testing.T) {
	a := New(CodeFlushLimit).WithDetail("first")
	b := New(CodeFlushLimit)
	assert.Empty(t, b.Detail)
	assert.NotSame(t, a, b)
}

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeFlushLimit)
	decorated := New(CodeFlushLimit).WithDetail("exceeded 3 passes")
	wrapped := fmt.Errorf("write failed: %w", decorated)

	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.False(t, stderrors.Is(wrapped, New(CodeDisposed)))

	uncoded := Newf(CategoryCLI, "boom")
	assert.True(t, stderrors.Is(uncoded, uncoded))
	assert.False(t, stderrors.Is(uncoded, Newf(CategoryCLI, "boom")))
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := New(CodeConfigRead).WithDetail("statebench.yaml").Wrap(cause)

	assert.Equal(t, "E201: Failed to read configuration file: statebench.yaml: disk gone", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, CodeConfigRead))

	coded := New(CodeDisposed)
	assert.Same(t, coded, FromError(coded, CodeConfigRead))

	plain := stderrors.New("plain")
	got := FromError(plain, CodeConfigRead)
	assert.Equal(t, CodeConfigRead, got.Code)
	assert.Same(t, plain, got.Unwrap())
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New(CodeFlushLimit).
		WithSuggestion("Wrap the write in Untrack.").
		Format()

	assert.Contains(t, out, "ERROR E101: Flush did not settle")
	assert.Contains(t, out, "Hint: Wrap the write in Untrack.")
	assert.Contains(t, out, "Learn more: https://decantr.dev/docs/errors/E101")
	// Registered explanation is used when no detail is set.
	assert.Contains(t, out, "pass limit")
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("outer: %w", New(CodeDisposed)))
	assert.Contains(t, buf.String(), "ERROR E103: Owner disposed")

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	assert.Contains(t, buf.String(), "ERROR: plain failure")
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Nil(t, wrapText("", 10))
}
