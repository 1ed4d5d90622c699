package bulk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtt159/sheet-ingest/internal/sheet"
)

func indexActions(n int) []Action {
	actions := make([]Action, n)
	for i := range actions {
		actions[i] = Index{Index: "people", Doc: sheet.Document{"n": fmt.Sprint(i)}}
	}
	return actions
}

func lineCount(payload []byte) int {
	return bytes.Count(payload, []byte("\n"))
}

func TestBatchSplitsAtLineCeiling(t *testing.T) {
	payloads, err := Batch(indexActions(1500), MaxLines)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.Equal(t, 2000, lineCount(payloads[0]))
	assert.Equal(t, 1000, lineCount(payloads[1]))
}

func TestBatchNeverExceedsCeiling(t *testing.T) {
	for _, n := range []int{1, 999, 1000, 1001, 2000, 2500} {
		payloads, err := Batch(indexActions(n), MaxLines)
		require.NoError(t, err)

		total := 0
		for i, p := range payloads {
			lines := lineCount(p)
			assert.LessOrEqual(t, lines, MaxLines, "n=%d payload %d", n, i)
			if i < len(payloads)-1 {
				assert.Equal(t, MaxLines, lines, "only the last payload may be partial")
			}
			total += lines
		}
		assert.Equal(t, 2*n, total, "n=%d", n)
	}
}

func TestBatchSmallInputSinglePayload(t *testing.T) {
	payloads, err := Batch(indexActions(3), MaxLines)
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := string(payloads[0])
	assert.True(t, strings.HasSuffix(p, "\n"), "payload must end with a newline")
	lines := strings.Split(strings.TrimSuffix(p, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.JSONEq(t, `{"index":{"_index":"people"}}`, lines[0])
	assert.JSONEq(t, `{"n":"0"}`, lines[1])
}

func TestBatchEmpty(t *testing.T) {
	payloads, err := Batch(nil, MaxLines)
	require.NoError(t, err)
	assert.Empty(t, payloads)
}

func TestBatchCustomCeiling(t *testing.T) {
	payloads, err := Batch(indexActions(5), 4)
	require.NoError(t, err)
	require.Len(t, payloads, 3)
	assert.Equal(t, []int{4, 4, 2}, []int{lineCount(payloads[0]), lineCount(payloads[1]), lineCount(payloads[2])})

	// An odd ceiling still never splits a pair.
	payloads, err = Batch(indexActions(3), 5)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.Equal(t, 4, lineCount(payloads[0]))
}

func TestBatcherStopsOnFlushError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	b := NewBatcher(2, func(context.Context, []byte) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	ctx := context.Background()
	actions := indexActions(3)
	require.NoError(t, b.Add(ctx, actions[0]))
	assert.ErrorIs(t, b.Add(ctx, actions[1]), boom)
	assert.Equal(t, 1, b.Flushes())
	assert.Zero(t, b.Pending())
}

func TestBatcherCloseFlushesRemainder(t *testing.T) {
	var got [][]byte
	b := NewBatcher(0, func(_ context.Context, p []byte) error {
		got = append(got, bytes.Clone(p))
		return nil
	})
	ctx := context.Background()
	require.NoError(t, b.Add(ctx, indexActions(1)[0]))
	assert.Empty(t, got)
	assert.Equal(t, 2, b.Pending())

	require.NoError(t, b.Close(ctx))
	require.Len(t, got, 1)
	assert.Equal(t, 1, b.Flushes())
	require.NoError(t, b.Close(ctx))
	assert.Len(t, got, 1, "closing an empty batcher sends nothing")
}
