package swiftgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultChunkSize is the per-transfer buffer used by the streaming relays.
const DefaultChunkSize = 64 * 1024

// TransferState is the lifecycle of a single relay transfer.
//
//	Idle -> Streaming -> Draining -> Done
//	  \________\___________\______-> Failed
type TransferState int32

const (
	StateIdle TransferState = iota
	StateStreaming
	StateDraining
	StateDone
	StateFailed
)

func (s TransferState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// transfer is the per-call session of a relay. It owns one chunk buffer;
// nothing else of the payload is held in memory.
type transfer struct {
	id     string
	op     string
	state  atomic.Int32
	bytes  atomic.Int64
	chunks int
	buf    []byte
}

func newTransfer(op string, chunkSize int) *transfer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &transfer{
		id:  uuid.NewString(),
		op:  op,
		buf: make([]byte, chunkSize),
	}
}

func (t *transfer) State() TransferState {
	return TransferState(t.state.Load())
}

func (t *transfer) transition(from, to TransferState) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

// finish moves the transfer to its terminal state. A transfer only reaches
// Done from Draining with no error.
func (t *transfer) finish(err error) {
	if err == nil && t.transition(StateDraining, StateDone) {
		return
	}
	if t.State() != StateDone {
		t.state.Store(int32(StateFailed))
	}
}

// pump copies src into dst one chunk at a time, in order. src is not read
// again until dst accepted the previous chunk and flush (if any) returned, so
// a slow sink pauses the source. On EOF the transfer is left in Draining and
// the caller ends the sink.
func (t *transfer) pump(ctx context.Context, dst io.Writer, flush func() error, src io.Reader) error {
	if !t.transition(StateIdle, StateStreaming) {
		return fmt.Errorf("%s: transfer %s already started", t.op, t.id)
	}

	for {
		if ctx.Err() != nil {
			t.finish(ctx.Err())
			return fmt.Errorf("%w: %w", ErrTransferAborted, context.Cause(ctx))
		}

		n, readErr := src.Read(t.buf)
		if n > 0 {
			if _, err := dst.Write(t.buf[:n]); err != nil {
				t.finish(err)
				return fmt.Errorf("%w: write chunk: %w", ErrTransferAborted, err)
			}
			if flush != nil {
				if err := flush(); err != nil {
					t.finish(err)
					return fmt.Errorf("%w: flush chunk: %w", ErrTransferAborted, err)
				}
			}
			t.bytes.Add(int64(n))
			t.chunks++
		}

		if errors.Is(readErr, io.EOF) {
			t.transition(StateStreaming, StateDraining)
			return nil
		}
		if readErr != nil {
			t.finish(readErr)
			if cause := context.Cause(ctx); cause != nil {
				return fmt.Errorf("%w: %w", ErrTransferAborted, cause)
			}
			return fmt.Errorf("%w: read chunk: %w", ErrTransferAborted, readErr)
		}
	}
}

func (t *transfer) stats(statusCode int, headersWritten bool) TransferStats {
	return TransferStats{
		ID:             t.id,
		StatusCode:     statusCode,
		Bytes:          t.bytes.Load(),
		Chunks:         t.chunks,
		State:          t.State(),
		HeadersWritten: headersWritten,
	}
}
