package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetPool(t *testing.T) {
	p := NewResetPool(func() *bytes.Buffer { return new(bytes.Buffer) }, func(b *bytes.Buffer) { b.Reset() })

	buf := p.Get()
	buf.WriteString("payload")
	p.Put(buf)
	require.Zero(t, buf.Len())

	require.NotNil(t, p.Get())
}

func TestHotPool(t *testing.T) {
	created := 0
	p := NewHotPool(func() int { created++; return created }, 3)
	require.Equal(t, 3, created)
	require.Positive(t, p.Get())
}
