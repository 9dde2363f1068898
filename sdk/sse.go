package revopt

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

const doneSentinel = "[DONE]"

// frameDecoder incrementally splits arbitrarily-chunked stream text into
// complete `data:` payloads. It keeps the trailing unterminated fragment
// across chunks, so the emitted frames are identical no matter how the
// input was chunked.
type frameDecoder struct {
	rest string
	done bool
}

// Feed appends one chunk and returns every complete payload it unlocked.
// Feeding an empty chunk is a no-op. Once the [DONE] sentinel has been
// seen the decoder is terminal and later chunks are ignored.
func (d *frameDecoder) Feed(chunk string) []string {
	if d.done || chunk == "" {
		return nil
	}

	d.rest += chunk

	var frames []string
	for {
		idx := strings.IndexByte(d.rest, '\n')
		if idx < 0 {
			return frames
		}
		line := strings.TrimSuffix(d.rest[:idx], "\r")
		d.rest = d.rest[idx+1:]

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Blank lines, comments, and other SSE fields carry no payload.
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == doneSentinel {
			d.done = true
			d.rest = ""
			return frames
		}
		if payload != "" {
			frames = append(frames, payload)
		}
	}
}

// Done reports whether the sentinel has been observed.
func (d *frameDecoder) Done() bool { return d.done }

// sseReader adapts a response body into a sequence of decoded payloads.
// Next returns io.EOF once the sentinel or the end of the body is reached;
// an unterminated trailing fragment at end of input is dropped.
type sseReader struct {
	body      io.ReadCloser
	decoder   frameDecoder
	pending   []string
	buf       []byte
	closed    atomic.Bool
	closeOnce sync.Once
}

func newSSEReader(body io.ReadCloser) *sseReader {
	return &sseReader{
		body: body,
		buf:  make([]byte, 4096),
	}
}

func (r *sseReader) Next() (string, error) {
	for {
		if len(r.pending) > 0 {
			frame := r.pending[0]
			r.pending = r.pending[1:]
			return frame, nil
		}
		if r.decoder.Done() || r.closed.Load() {
			return "", io.EOF
		}

		n, err := r.body.Read(r.buf)
		if n > 0 {
			r.pending = r.decoder.Feed(string(r.buf[:n]))
		}
		if err != nil {
			if len(r.pending) > 0 {
				continue
			}
			if err == io.EOF || r.closed.Load() {
				return "", io.EOF
			}
			return "", err
		}
	}
}

func (r *sseReader) Close() error {
	var closeErr error
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		if r.body != nil {
			closeErr = r.body.Close()
		}
	})
	return closeErr
}
