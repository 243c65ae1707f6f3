package assistant

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/common/observability"
)

// Stream emits start, then the reply as deltas, then complete. If ctx ends
// first it emits a single error chunk when there is room and stops. The
// channel is always closed.
func (e *Engine) Stream(ctx context.Context, message string, history []chat.Turn, opts chat.Options) <-chan chat.Chunk {
	out := make(chan chat.Chunk, 8)

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("stream panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
				trySend(out, chat.Chunk{Type: chat.ChunkError, Content: "stream failed"})
			}
		}()

		start := time.Now()
		opts = withSession(opts)

		ctx, span := observability.StartSpan(ctx, "assistant.Stream",
			attribute.String("session.id", opts.SessionID))
		defer observability.EndSpan(span, nil)

		send := func(c chat.Chunk) bool {
			if ctx.Err() != nil {
				trySend(out, errorChunk(ctx))
				return false
			}
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				trySend(out, errorChunk(ctx))
				return false
			}
		}

		s := e.settings.Get(ctx)
		a, resp := e.prepare(message, s)

		if !send(chat.Chunk{
			Type: chat.ChunkStart,
			Metadata: &chat.ChunkMetadata{
				Intent:     resp.Intent,
				Confidence: resp.Confidence,
			},
		}) {
			return
		}

		resp = e.finish(ctx, message, history, opts, s, a, resp, start)

		deltas := []string{resp.Content}
		if s.Streaming {
			deltas = SplitDeltas(resp.Content, e.wordsPerDelta)
		}
		for _, d := range deltas {
			if !send(chat.Chunk{Type: chat.ChunkDelta, Content: d}) {
				return
			}
		}

		send(chat.Chunk{
			Type: chat.ChunkComplete,
			Metadata: &chat.ChunkMetadata{
				Intent:     resp.Intent,
				Confidence: resp.Confidence,
				Response:   &resp,
			},
		})
	}()

	return out
}

func errorChunk(ctx context.Context) chat.Chunk {
	return chat.Chunk{Type: chat.ChunkError, Content: ctx.Err().Error()}
}

func trySend(out chan<- chat.Chunk, c chat.Chunk) {
	select {
	case out <- c:
	default:
	}
}

// SplitDeltas cuts text into groups of n words. Whitespace stays attached
// to the preceding word, so the groups concatenate back to text.
func SplitDeltas(text string, n int) []string {
	if n <= 0 {
		n = 1
	}

	var (
		out    []string
		words  int
		begin  int
		inWord bool
	)
	for i, r := range text {
		space := unicode.IsSpace(r)
		if !space && !inWord {
			if words == n {
				out = append(out, text[begin:i])
				begin = i
				words = 0
			}
			words++
		}
		inWord = !space
	}
	if begin < len(text) {
		out = append(out, text[begin:])
	}
	return out
}
