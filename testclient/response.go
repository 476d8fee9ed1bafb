package testclient

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"iter"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/testclient/sse"
)

// chunkSize bounds the bytes returned by a single Chunk call.
const chunkSize = 32 * 1024

type bodyState int

const (
	bodyUnread bodyState = iota
	bodyBuffered
	bodyStreaming
	bodyExhausted
	bodyClosed
)

// TestResponse wraps a received response. Status and headers are available
// immediately. The body is read either buffered (Bytes, Text, JSON) or
// streamed (Chunk, ChunkText, Chunks, Events), never both: once one mode
// has been used the other fails with a BodyReadError.
type TestResponse struct {
	raw *http.Response

	mu      sync.Mutex
	state   bodyState
	buf     []byte
	bufErr  error
	pending error
}

func newTestResponse(resp *http.Response) *TestResponse {
	return &TestResponse{raw: resp}
}

// Status returns the status code.
func (r *TestResponse) Status() int { return r.raw.StatusCode }

// StatusText returns the well-known reason phrase for the status code, or
// "" if there is none.
func (r *TestResponse) StatusText() string { return http.StatusText(r.raw.StatusCode) }

// Proto returns the protocol version, e.g. "HTTP/1.1".
func (r *TestResponse) Proto() string { return r.raw.Proto }

// Headers returns a copy of the response headers.
func (r *TestResponse) Headers() http.Header { return r.raw.Header.Clone() }

// Header returns the first value of the named response header.
func (r *TestResponse) Header(name string) string { return r.raw.Header.Get(name) }

// Cookies returns the cookies set by the response.
func (r *TestResponse) Cookies() []*http.Cookie { return r.raw.Cookies() }

// ContentLength returns the declared body length, or -1 if unknown.
func (r *TestResponse) ContentLength() int64 { return r.raw.ContentLength }

// Bytes reads the whole body and returns it. It may be called repeatedly;
// later calls return a copy of the same bytes.
func (r *TestResponse) Bytes() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case bodyUnread:
		data, err := io.ReadAll(r.raw.Body)
		_ = r.raw.Body.Close()
		r.state = bodyBuffered
		if err != nil {
			r.bufErr = errors.BodyReadFailed(err)
		} else {
			r.buf = data
		}
	case bodyStreaming:
		return nil, errors.BodyReadFailed(errors.ErrBodyStreaming)
	case bodyExhausted, bodyClosed:
		return nil, errors.BodyReadFailed(errors.ErrBodyConsumed)
	}

	if r.bufErr != nil {
		return nil, r.bufErr
	}
	return bytes.Clone(r.buf), nil
}

// Text reads the whole body as UTF-8 text. A body that is not valid UTF-8
// fails with a DecodeError.
func (r *TestResponse) Text() (string, error) {
	data, err := r.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.DecodeFailed("utf-8", errors.ErrInvalidUTF8)
	}
	return string(data), nil
}

// JSON reads the whole body and unmarshals it into v. Unknown fields are
// ignored.
func (r *TestResponse) JSON(v any) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.DecodeFailed("json", err)
	}
	return nil
}

// DecodeJSON reads the body of r as JSON into a new T.
//
//	user, err := testclient.DecodeJSON[User](resp)
func DecodeJSON[T any](r *TestResponse) (T, error) {
	var v T
	err := r.JSON(&v)
	return v, err
}

func (r *TestResponse) beginStream() error {
	switch r.state {
	case bodyUnread:
		r.state = bodyStreaming
	case bodyBuffered:
		return errors.BodyReadFailed(errors.ErrBodyBuffered)
	case bodyClosed:
		return errors.BodyReadFailed(errors.ErrBodyConsumed)
	}
	return nil
}

// Chunk returns the next piece of the body as it arrives from the network,
// without buffering the rest. It returns io.EOF once the body is exhausted,
// and keeps returning io.EOF afterwards.
func (r *TestResponse) Chunk() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.beginStream(); err != nil {
		return nil, err
	}
	if r.state == bodyExhausted {
		return nil, io.EOF
	}
	if r.pending != nil {
		err := r.pending
		r.finishStream()
		return nil, err
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := r.raw.Body.Read(buf)
		if n > 0 {
			switch {
			case err == io.EOF:
				r.finishStream()
			case err != nil:
				r.pending = errors.BodyReadFailed(err)
			}
			return buf[:n], nil
		}
		if err == io.EOF {
			r.finishStream()
			return nil, io.EOF
		}
		if err != nil {
			r.finishStream()
			return nil, errors.BodyReadFailed(err)
		}
	}
}

func (r *TestResponse) finishStream() {
	_ = r.raw.Body.Close()
	r.state = bodyExhausted
	r.pending = nil
}

// ChunkText is Chunk for UTF-8 bodies. Chunk boundaries follow the network,
// so a multi-byte character split across two chunks fails with a
// DecodeError.
func (r *TestResponse) ChunkText() (string, error) {
	data, err := r.Chunk()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.DecodeFailed("utf-8", errors.ErrInvalidUTF8)
	}
	return string(data), nil
}

// Chunks returns an iterator over the remaining body chunks. Iteration
// stops at the end of the body or after yielding the first error.
//
//	for chunk, err := range resp.Chunks() {
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    ...
//	}
func (r *TestResponse) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := r.Chunk()
			if stderrors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Events streams the body as Server-Sent Events. The returned reader owns
// the body; closing it releases the connection.
func (r *TestResponse) Events() (sse.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case bodyStreaming, bodyExhausted:
		return nil, errors.BodyReadFailed(errors.ErrBodyStreaming)
	}
	if err := r.beginStream(); err != nil {
		return nil, err
	}
	return sse.NewReader(r.raw.Body), nil
}

// Close releases the body without reading the rest of it. It may be called
// while another goroutine is blocked in Chunk, which then fails. Closing a
// fully read body is a no-op.
func (r *TestResponse) Close() error {
	err := r.raw.Body.Close()
	if r.mu.TryLock() {
		if r.state == bodyUnread {
			r.state = bodyClosed
		}
		r.mu.Unlock()
	}
	return err
}

// Raw returns the underlying *http.Response. Reading its body directly
// bypasses the bookkeeping above.
func (r *TestResponse) Raw() *http.Response {
	return r.raw
}
