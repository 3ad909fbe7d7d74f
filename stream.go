package jsonify

import (
	"context"
	"io"

	eng "github.com/jsonify-go/jsonify/internal/engine"
)

// Stream is the pull-based fragment emitter for one root value. Fragments
// concatenate to the JSON serialization of the root; no fragment boundary
// carries meaning. A Stream is single-pass: once Next reports io.EOF or an
// error, the state is terminal.
//
// A fragment is produced only in response to a Next call, so a slow consumer
// never causes buffering ahead of its own demand.
type Stream struct {
	gen  *eng.Generator
	err  error
	done bool
	n    int64
}

// New builds a Stream over root. Serialization starts on the first demand
// pulse; New itself touches no pending value or source.
func New(root any, opts ...EncodeOpt) *Stream {
	var opt EncodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	drv := getScalarDriver()
	return &Stream{gen: eng.New(root, eng.Options{
		Transform: opt.Replacer,
		Allow:     opt.Allow,
		Indent:    opt.Indent,
		Scalar:    drv.AppendScalar,
	})}
}

// Next is one demand pulse: it returns the next output fragment, blocking
// while an embedded pending value or streaming source has nothing ready.
// io.EOF signals end-of-output exactly once and is then sticky; any other
// error is terminal, sticky, and mutually exclusive with io.EOF.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}
	frag, err := s.gen.Next(ctx)
	if err == io.EOF {
		s.done = true
		return nil, io.EOF
	}
	if err != nil {
		s.err = toIssues(err, s.n)
		return nil, s.err
	}
	s.n += int64(len(frag))
	return frag, nil
}

// Offset reports the number of output bytes produced so far.
func (s *Stream) Offset() int64 { return s.n }

// Pipe drains the stream into w, honoring backpressure through w's own
// blocking. It returns the number of bytes written. A write error tears the
// stream down without requesting further data from any bound source.
func (s *Stream) Pipe(ctx context.Context, w io.Writer) (int64, error) {
	var n int64
	for {
		frag, err := s.Next(ctx)
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if len(frag) == 0 {
			continue
		}
		m, werr := w.Write(frag)
		n += int64(m)
		if werr != nil {
			s.err = werr
			return n, werr
		}
	}
}

// Reader adapts the stream to io.Reader, the conventional byte-oriented pull
// transport. Read issues demand pulses as needed and reports io.EOF after
// the final fragment.
func (s *Stream) Reader(ctx context.Context) io.Reader {
	return &streamReader{ctx: ctx, s: s}
}

type streamReader struct {
	ctx context.Context
	s   *Stream
	buf []byte
}

func (r *streamReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		frag, err := r.s.Next(r.ctx)
		if err != nil {
			return 0, err
		}
		r.buf = frag
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
