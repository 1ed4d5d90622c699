package bulk

import (
	"bytes"
	"context"
	"fmt"
)

// MaxLines caps the lines of one payload. Counting lines rather than bytes is
// a fixed policy that keeps typical sheet payloads under a 10MB request limit;
// it does not guarantee the byte size. The ceiling always wins: a sheet
// larger than one payload is split over several bulk requests.
const MaxLines = 2000

// FlushFunc receives a finished payload. Its slice is only valid during the
// call.
type FlushFunc func(ctx context.Context, payload []byte) error

// Batcher accumulates action lines and hands a payload to its FlushFunc every
// time the line ceiling is reached.
type Batcher struct {
	maxLines int
	flush    FlushFunc
	buf      bytes.Buffer
	lines    int
	flushes  int
}

// NewBatcher returns a batcher flushing at maxLines; values below 2 fall back
// to MaxLines.
func NewBatcher(maxLines int, flush FlushFunc) *Batcher {
	if maxLines < 2 {
		maxLines = MaxLines
	}
	return &Batcher{maxLines: maxLines, flush: flush}
}

// Add appends the two lines of a and flushes once the ceiling is reached.
func (b *Batcher) Add(ctx context.Context, a Action) error {
	meta, body, err := a.Lines()
	if err != nil {
		return fmt.Errorf("encode bulk action: %w", err)
	}
	b.buf.Write(meta)
	b.buf.WriteByte('\n')
	b.buf.Write(body)
	b.buf.WriteByte('\n')
	b.lines += 2

	// Flush as soon as another pair would not fit.
	if b.lines+2 > b.maxLines {
		return b.Flush(ctx)
	}
	return nil
}

// Flush sends whatever is buffered. It is a no-op on an empty buffer.
func (b *Batcher) Flush(ctx context.Context) error {
	if b.lines == 0 {
		return nil
	}
	err := b.flush(ctx, b.buf.Bytes())
	b.buf.Reset()
	b.lines = 0
	if err != nil {
		return err
	}
	b.flushes++
	return nil
}

// Close flushes the trailing partial batch.
func (b *Batcher) Close(ctx context.Context) error {
	return b.Flush(ctx)
}

// Flushes returns the number of payloads delivered successfully.
func (b *Batcher) Flushes() int {
	return b.flushes
}

// Pending returns the number of buffered lines.
func (b *Batcher) Pending() int {
	return b.lines
}

// Batch encodes actions into payloads of at most maxLines lines each.
func Batch(actions []Action, maxLines int) ([][]byte, error) {
	var payloads [][]byte
	b := NewBatcher(maxLines, func(_ context.Context, payload []byte) error {
		payloads = append(payloads, bytes.Clone(payload))
		return nil
	})
	ctx := context.Background()
	for _, a := range actions {
		if err := b.Add(ctx, a); err != nil {
			return nil, err
		}
	}
	if err := b.Close(ctx); err != nil {
		return nil, err
	}
	return payloads, nil
}
