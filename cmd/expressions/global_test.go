package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PavelStransky/expressions"
	"github.com/PavelStransky/expressions/ie"
)

// lockedBuffer is a bytes.Buffer safe for one writer and one reader.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "global.ie")
	g := expressions.NewGlobal(expressions.FilePort(path), ie.Binary, nil)
	var out lockedBuffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, cmd, g, path) }()

	// The first listing shows the empty context.
	require.Eventually(t, func() bool { return strings.HasPrefix(out.String(), "--\n") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, g.SetVariable("x", expressions.Int(1)))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "x = 1 (int)\n") }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
