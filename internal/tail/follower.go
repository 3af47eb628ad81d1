// Package tail follows a growing log file and yields newly appended lines.
//
// The follower tracks forward growth only: it opens the file at its current
// end, so pre-existing content is never replayed. If the file is missing it
// polls until the file appears. If the file is rotated out from under the
// open handle (inode change or truncation) it reopens and continues from
// the start of the replacement file.
package tail

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds follower timing knobs.
type Config struct {
	// Path of the log file to follow.
	Path string
	// PollInterval is the sleep between reads that yielded no data.
	PollInterval time.Duration
	// OpenRetryInterval is the sleep between existence checks while the
	// file is missing.
	OpenRetryInterval time.Duration
}

// DefaultConfig returns the follower defaults for the given path.
func DefaultConfig(path string) Config {
	return Config{
		Path:              path,
		PollInterval:      200 * time.Millisecond,
		OpenRetryInterval: 1 * time.Second,
	}
}

// Follower reads appended lines from a single log file.
type Follower struct {
	config Config
	log    zerolog.Logger

	file   *os.File
	reader *bufio.Reader
	offset int64
	opened atomic.Bool
}

// NewFollower creates a follower for the configured path. Nothing is opened
// until Run is called.
func NewFollower(config Config, log zerolog.Logger) *Follower {
	return &Follower{config: config, log: log}
}

// Opened reports whether the target file has been opened at least once.
// Used by the readiness endpoint.
func (f *Follower) Opened() bool {
	return f.opened.Load()
}

// Run follows the file and sends each appended line (without its trailing
// newline) to out until ctx is cancelled. The sequence never completes on
// its own; the only non-nil return is ctx.Err(). out is closed on return.
func (f *Follower) Run(ctx context.Context, out chan<- string) error {
	defer close(out)
	defer f.closeFile()

	if err := f.waitForFile(ctx); err != nil {
		return err
	}

	var partial strings.Builder
	for {
		line, err := f.reader.ReadString('\n')
		if line != "" {
			f.offset += int64(len(line))
		}

		if err == nil {
			partial.WriteString(strings.TrimRight(line, "\n"))
			select {
			case out <- partial.String():
			case <-ctx.Done():
				return ctx.Err()
			}
			partial.Reset()
			continue
		}

		if err != io.EOF {
			f.log.Warn().Err(err).Str("path", f.config.Path).Msg("read error, retrying")
		}

		// Partially written line: keep what we have and wait for the
		// rest.
		partial.WriteString(line)

		if rotated := f.checkRotation(); rotated {
			partial.Reset()
			continue
		}

		select {
		case <-time.After(f.config.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitForFile polls until the file can be opened, then seeks to its end so
// that only new content is followed.
func (f *Follower) waitForFile(ctx context.Context) error {
	for {
		file, err := os.Open(f.config.Path)
		if err == nil {
			offset, err := file.Seek(0, io.SeekEnd)
			if err != nil {
				file.Close()
				return err
			}
			f.adopt(file, offset)
			f.opened.Store(true)
			f.log.Info().Str("path", f.config.Path).Int64("offset", offset).Msg("following log file")
			return nil
		}

		if !os.IsNotExist(err) {
			f.log.Warn().Err(err).Str("path", f.config.Path).Msg("cannot open log file, retrying")
		} else {
			f.log.Info().Str("path", f.config.Path).Msg("log file not found, waiting for it to appear")
		}

		select {
		case <-time.After(f.config.OpenRetryInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// checkRotation detects the file being replaced (different inode at the
// path) or truncated (size below our offset) and reopens from the start of
// the current file so post-rotation lines are not lost.
func (f *Follower) checkRotation() bool {
	pathInfo, err := os.Stat(f.config.Path)
	if err != nil {
		// Path gone mid-rotation; keep polling the old handle, the
		// next idle check will find the replacement.
		return false
	}

	fileInfo, err := f.file.Stat()
	if err != nil {
		return false
	}

	sameFile := os.SameFile(pathInfo, fileInfo)
	if sameFile && pathInfo.Size() >= f.offset {
		return false
	}

	file, err := os.Open(f.config.Path)
	if err != nil {
		return false
	}

	f.closeFile()
	f.adopt(file, 0)
	f.log.Info().Str("path", f.config.Path).Bool("truncated", sameFile).Msg("log file rotated, reopened")
	return true
}

func (f *Follower) adopt(file *os.File, offset int64) {
	f.file = file
	f.reader = bufio.NewReader(file)
	f.offset = offset
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}
