// Package export assembles a remote document from ranged chunks and writes
// it to disk once complete.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// DefaultChunkSize is the range requested per chunk (100 MiB).
const DefaultChunkSize int64 = 100 << 20

// ErrStreamDone is returned by Next after the final chunk was delivered.
var ErrStreamDone = errors.New("export: stream already complete")

// ErrNoProgress is returned when a ranged response carries no bytes although
// the stated total has not been reached.
var ErrNoProgress = errors.New("export: empty chunk before end of content")

// UnknownTotal marks a chunk whose response did not state the full length.
const UnknownTotal int64 = -1

// Chunk is one ranged response.
type Chunk struct {
	Data []byte
	// Total is the full content length from Content-Range, or UnknownTotal.
	Total int64
	// Complete is set when the server ignored the range and sent the whole
	// content in one response.
	Complete bool
}

// ChunkSource fetches the inclusive byte range [start, end] of one document.
type ChunkSource interface {
	FetchChunk(ctx context.Context, start, end int64) (Chunk, error)
}

// Progress is reported after every chunk.
type Progress struct {
	Received int64
	Total    int64 // UnknownTotal until a response states it
	// Fraction is in (0, 1], never decreases across a stream, and is exactly
	// 1 when Final is set.
	Fraction float64
	Final    bool
}

// Percent is Fraction as a whole percentage, rounded down.
func (p Progress) Percent() int {
	return int(p.Fraction * 100)
}

// Stream pulls chunks from a ChunkSource in order and buffers them in memory.
type Stream struct {
	src       ChunkSource
	chunkSize int64

	buf      bytes.Buffer
	received int64
	total    int64
	fraction float64
	done     bool
}

// NewStream returns a stream over src. A non-positive chunkSize selects
// DefaultChunkSize.
func NewStream(src ChunkSource, chunkSize int64) *Stream {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Stream{src: src, chunkSize: chunkSize, total: UnknownTotal}
}

// Next fetches the next chunk and reports progress. After a Progress with
// Final set, Next returns ErrStreamDone.
func (s *Stream) Next(ctx context.Context) (Progress, error) {
	if s.done {
		return Progress{}, ErrStreamDone
	}

	start := s.received
	end := start + s.chunkSize - 1

	chunk, err := s.src.FetchChunk(ctx, start, end)
	if err != nil {
		return Progress{}, fmt.Errorf("export: fetching bytes %d-%d: %w", start, end, err)
	}

	n := int64(len(chunk.Data))

	if chunk.Complete {
		s.buf.Reset()
		s.buf.Write(chunk.Data)
		s.received = n
		s.total = n
		s.done = true

		return s.progress(), nil
	}

	s.buf.Write(chunk.Data)
	s.received += n

	if chunk.Total >= 0 {
		s.total = chunk.Total
	}

	// The server picks chunk boundaries. With a known total only reaching it
	// ends the stream; a short chunk ends it only when the total is unknown.
	switch {
	case s.total >= 0 && s.received >= s.total:
		s.done = true
	case s.total >= 0 && n == 0:
		return Progress{}, fmt.Errorf("%w: %d of %d bytes", ErrNoProgress, s.received, s.total)
	case s.total < 0 && n < s.chunkSize:
		s.done = true
	}

	return s.progress(), nil
}

func (s *Stream) progress() Progress {
	var f float64

	switch {
	case s.done:
		f = 1
	case s.total > 0:
		f = float64(s.received) / float64(s.total)
	default:
		f = float64(s.received) / float64(s.received+s.chunkSize)
	}

	// Switching from an estimate to a known total may compute a lower value.
	if f < s.fraction {
		f = s.fraction
	}

	s.fraction = f

	return Progress{
		Received: s.received,
		Total:    s.total,
		Fraction: f,
		Final:    s.done,
	}
}

// Done reports whether the final chunk was received.
func (s *Stream) Done() bool {
	return s.done
}

// Bytes returns the content assembled so far. The slice is only valid until
// the next call to Next.
func (s *Stream) Bytes() []byte {
	return s.buf.Bytes()
}
