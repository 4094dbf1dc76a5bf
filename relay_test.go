package swiftgate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter records every write and the number of source reads that
// had happened when it was made.
type recordingWriter struct {
	src    *countingReader
	writes [][]byte
	seenAt []int
	err    error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, bytes.Clone(p))
	w.seenAt = append(w.seenAt, w.src.reads)
	return len(p), nil
}

type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func TestTransferState_String(t *testing.T) {
	tests := []struct {
		state TransferState
		want  string
	}{
		{StateIdle, "idle"},
		{StateStreaming, "streaming"},
		{StateDraining, "draining"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{TransferState(42), "state(42)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestTransfer_Pump(t *testing.T) {
	t.Run("forwards chunks in order and one at a time", func(t *testing.T) {
		data := []byte("abcdefghijklmnopqrstuvwxyz")
		src := &countingReader{r: bytes.NewReader(data)}
		dst := &recordingWriter{src: src}
		tr := newTransfer("test", 4)

		err := tr.pump(context.Background(), dst, nil, src)

		require.NoError(t, err)
		assert.Equal(t, StateDraining, tr.State())
		assert.Equal(t, data, bytes.Join(dst.writes, nil))
		assert.Equal(t, int64(len(data)), tr.bytes.Load())
		assert.Equal(t, 7, tr.chunks)
		for i, seen := range dst.seenAt {
			assert.Equal(t, i+1, seen, "chunk %d written after %d reads", i, seen)
			assert.LessOrEqual(t, len(dst.writes[i]), 4)
		}

		tr.finish(nil)
		assert.Equal(t, StateDone, tr.State())
	})

	t.Run("flushes every chunk before the next read", func(t *testing.T) {
		src := &countingReader{r: bytes.NewReader(make([]byte, 10))}
		var flushedAt []int
		tr := newTransfer("test", 3)

		err := tr.pump(context.Background(), io.Discard, func() error {
			flushedAt = append(flushedAt, src.reads)
			return nil
		}, src)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, flushedAt)
	})

	t.Run("sink error fails the transfer", func(t *testing.T) {
		errSink := errors.New("sink closed")
		src := &countingReader{r: bytes.NewReader(make([]byte, 100))}
		tr := newTransfer("test", 10)

		err := tr.pump(context.Background(), &recordingWriter{src: src, err: errSink}, nil, src)

		assert.ErrorIs(t, err, ErrTransferAborted)
		assert.ErrorIs(t, err, errSink)
		assert.Equal(t, StateFailed, tr.State())
		assert.Equal(t, 1, src.reads, "source must not be read past a failed write")
	})

	t.Run("flush error fails the transfer", func(t *testing.T) {
		errFlush := errors.New("flush failed")
		tr := newTransfer("test", 10)

		err := tr.pump(context.Background(), io.Discard, func() error { return errFlush }, bytes.NewReader(make([]byte, 100)))

		assert.ErrorIs(t, err, errFlush)
		assert.Equal(t, StateFailed, tr.State())
	})

	t.Run("source error fails the transfer", func(t *testing.T) {
		errSource := errors.New("reset by peer")
		tr := newTransfer("test", 10)

		err := tr.pump(context.Background(), io.Discard, nil, io.MultiReader(bytes.NewReader(make([]byte, 15)), &errReader{errSource}))

		assert.ErrorIs(t, err, ErrTransferAborted)
		assert.ErrorIs(t, err, errSource)
		assert.Equal(t, StateFailed, tr.State())
		assert.Equal(t, int64(15), tr.bytes.Load())
	})

	t.Run("cancelled context reports its cause", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(ErrClosed)
		tr := newTransfer("test", 10)

		err := tr.pump(ctx, io.Discard, nil, bytes.NewReader(make([]byte, 100)))

		assert.ErrorIs(t, err, ErrTransferAborted)
		assert.ErrorIs(t, err, ErrClosed)
		assert.Equal(t, StateFailed, tr.State())
		assert.Equal(t, int64(0), tr.bytes.Load())
	})

	t.Run("cannot start twice", func(t *testing.T) {
		tr := newTransfer("test", 10)
		require.NoError(t, tr.pump(context.Background(), io.Discard, nil, bytes.NewReader(nil)))

		err := tr.pump(context.Background(), io.Discard, nil, bytes.NewReader(nil))
		assert.Error(t, err)
	})
}

func TestTransfer_Finish(t *testing.T) {
	t.Run("error from draining fails", func(t *testing.T) {
		tr := newTransfer("test", 0)
		require.True(t, tr.transition(StateIdle, StateStreaming))
		require.True(t, tr.transition(StateStreaming, StateDraining))

		tr.finish(errors.New("upstream said no"))
		assert.Equal(t, StateFailed, tr.State())
	})

	t.Run("success before draining fails", func(t *testing.T) {
		tr := newTransfer("test", 0)
		tr.finish(nil)
		assert.Equal(t, StateFailed, tr.State())
	})

	t.Run("done is terminal", func(t *testing.T) {
		tr := newTransfer("test", 0)
		require.True(t, tr.transition(StateIdle, StateDraining))
		tr.finish(nil)
		tr.finish(errors.New("late"))
		assert.Equal(t, StateDone, tr.State())
	})

	t.Run("default chunk size", func(t *testing.T) {
		tr := newTransfer("test", 0)
		assert.Len(t, tr.buf, DefaultChunkSize)
		assert.NotEmpty(t, tr.id)
	})
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }
