package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_Lines(t *testing.T) {
	r := NewLineReader(strings.NewReader("  first  \n\nthird"))
	ctx := context.Background()

	for _, want := range []string{"first", "", "third"} {
		got, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Canceled(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	r := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCanceled)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCanceled)
}

func TestLineReader_KeepsLineAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewLineReader(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.ReadLine(ctx)
	require.ErrorIs(t, err, ErrInputCanceled)

	go func() {
		_, _ = io.WriteString(pw, "late answer\n")
		_ = pw.Close()
	}()

	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late answer", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out strings.Builder
			got, err := Confirm(context.Background(), NewLineReader(strings.NewReader(tt.input)), &out, "Delete it?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete it? [y/N]")
		})
	}
}
