package tail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(path string) Config {
	return Config{
		Path:              path,
		PollInterval:      10 * time.Millisecond,
		OpenRetryInterval: 10 * time.Millisecond,
	}
}

func startFollower(t *testing.T, path string) (<-chan string, context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan string, 64)
	done := make(chan error, 1)

	f := NewFollower(testConfig(path), zerolog.Nop())
	go func() {
		done <- f.Run(ctx, out)
	}()

	return out, cancel, done
}

func expectLine(t *testing.T, out <-chan string, want string) {
	t.Helper()
	select {
	case got, ok := <-out:
		require.True(t, ok, "line channel closed unexpectedly")
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for line %q", want)
	}
}

func expectNoLine(t *testing.T, out <-chan string) {
	t.Helper()
	select {
	case got := <-out:
		t.Fatalf("unexpected line %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func appendTo(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(data)
	require.NoError(t, err)
}

func TestFollowerSkipsPreExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	appendTo(t, path, "old line 1\nold line 2\n")

	out, cancel, done := startFollower(t, path)
	defer cancel()

	// Give the follower a moment to open and seek to end.
	time.Sleep(50 * time.Millisecond)
	expectNoLine(t, out)

	appendTo(t, path, "new line\n")
	expectLine(t, out, "new line")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestFollowerWaitsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")

	out, cancel, done := startFollower(t, path)
	defer cancel()

	// File does not exist yet; nothing is produced and Run keeps polling.
	expectNoLine(t, out)

	appendTo(t, path, "first\nsecond\n")
	// The file is opened at its then-current end, so content written in
	// the same burst as creation may or may not be seen depending on
	// timing; anything appended after open definitely is.
	time.Sleep(50 * time.Millisecond)
	drain(out)

	appendTo(t, path, "after open\n")
	expectLine(t, out, "after open")

	cancel()
	<-done
}

func TestFollowerYieldsLinesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	appendTo(t, path, "")

	out, cancel, done := startFollower(t, path)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "a\nb\nc\n")
	expectLine(t, out, "a")
	expectLine(t, out, "b")
	expectLine(t, out, "c")

	cancel()
	<-done
}

func TestFollowerAssemblesPartialWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	appendTo(t, path, "")

	out, cancel, done := startFollower(t, path)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "partial start")
	expectNoLine(t, out)

	appendTo(t, path, " and the rest\n")
	expectLine(t, out, "partial start and the rest")

	cancel()
	<-done
}

func TestFollowerReopensAfterRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")
	appendTo(t, path, "")

	out, cancel, done := startFollower(t, path)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "before rotation\n")
	expectLine(t, out, "before rotation")

	// Rotate: move the file aside and create a fresh one at the path.
	require.NoError(t, os.Rename(path, filepath.Join(dir, "access.log.1")))
	appendTo(t, path, "after rotation\n")

	expectLine(t, out, "after rotation")

	cancel()
	<-done
}

func TestFollowerReopensAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	appendTo(t, path, "seed content so truncation shrinks the file\n")

	out, cancel, done := startFollower(t, path)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "visible\n")
	expectLine(t, out, "visible")

	require.NoError(t, os.Truncate(path, 0))
	// Let an idle poll notice the shrink before writing.
	time.Sleep(100 * time.Millisecond)
	appendTo(t, path, "fresh after truncate\n")

	expectLine(t, out, "fresh after truncate")

	cancel()
	<-done
}

func TestFollowerClosesChannelOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	appendTo(t, path, "")

	out, cancel, done := startFollower(t, path)
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	for range out {
		// drain until close
	}
}

func drain(out <-chan string) {
	for {
		select {
		case <-out:
		default:
			return
		}
	}
}
