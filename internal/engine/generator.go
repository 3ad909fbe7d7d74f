package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

const textReadSize = 4096

var (
	nullLit  = []byte("null")
	commaLit = []byte(",")
)

type frameKind int

const (
	frameArray frameKind = iota
	frameObject
	frameText
	frameItems
)

// frame is one level of the traversal stack: a container being emitted or a
// bound streaming source being drained.
type frame struct {
	kind frameKind

	// array / object
	elems []any
	pairs []Member
	idx   int
	sep   bool // separator fragment already emitted for the current position
	keyed bool // key fragment already emitted for the current member

	// text source
	text io.Reader
	buf  []byte
	esc  escaper

	// item source
	items   ItemSource
	child   *Generator
	pending *any // next item waiting for its separator
	count   int
}

// Generator is the resumable depth-first traversal producing JSON fragments.
// Each Next call yields at most one fragment; io.EOF is the terminal done
// signal. A Generator is single-pass and never replayed.
type Generator struct {
	opt    *options
	base   int  // indent depth offset, non-zero for item sub-generators
	item   bool // generator serializes one item-source element
	staged *any
	key    string // replacer key of the staged position
	root   bool   // staged position is a (sub-)root
	stack  []frame
	done   bool
	err    error
}

// New builds a Generator over root. A malformed root transform surfaces on
// the first Next call.
func New(root any, o Options) *Generator {
	return newGenerator(newOptions(o), root, 0, false)
}

func newGenerator(opt *options, root any, base int, item bool) *Generator {
	g := &Generator{opt: opt, base: base, item: item}
	if item {
		// Items are piped with the root key but, like any other positional
		// member, may change shape freely under a transform.
		v := opt.pipe("", root)
		g.staged, g.root = &v, true
		return g
	}
	v, err := opt.pipeRoot(root)
	if err != nil {
		g.err = err
		return g
	}
	g.staged, g.root = &v, true
	return g
}

// Next advances the traversal by one fragment. It blocks while a bound
// pending value or streaming source has no data ready, which is how a demand
// pulse suspends in a pull model. Errors and io.EOF are terminal and sticky.
func (g *Generator) Next(ctx context.Context) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.done {
		return nil, io.EOF
	}
	frag, err := g.step(ctx)
	if err == io.EOF {
		g.done = true
	} else if err != nil {
		g.err = err
	}
	return frag, err
}

func (g *Generator) step(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.staged != nil {
			frag, emitted, err := g.emitStaged(ctx)
			if err != nil {
				return nil, err
			}
			if emitted {
				return frag, nil
			}
			continue
		}
		if len(g.stack) == 0 {
			return nil, io.EOF
		}
		f := &g.stack[len(g.stack)-1]
		switch f.kind {
		case frameArray:
			frag, emitted, err := g.stepArray(f)
			if err != nil {
				return nil, err
			}
			if emitted {
				return frag, nil
			}
		case frameObject:
			frag, emitted, err := g.stepObject(f)
			if err != nil {
				return nil, err
			}
			if emitted {
				return frag, nil
			}
		case frameText:
			frag, emitted, err := g.stepText(f)
			if err != nil {
				return nil, err
			}
			if emitted {
				return frag, nil
			}
		case frameItems:
			frag, emitted, err := g.stepItems(ctx, f)
			if err != nil {
				return nil, err
			}
			if emitted {
				return frag, nil
			}
		}
	}
}

// emitStaged classifies the staged value and either emits its first fragment
// or resolves a pending value in place. The staged value has already been
// piped through the hook and replacer for its position.
func (g *Generator) emitStaged(ctx context.Context) ([]byte, bool, error) {
	v := *g.staged
	c := classify(v)
	switch c.kind {
	case KindPending:
		res, err := c.pending.Await(ctx)
		if err != nil {
			return nil, false, g.fail(CodePendingFailure, err)
		}
		// The resolution occupies the same position: full pipeline again.
		piped, perr := g.repipe(res)
		if perr != nil {
			return nil, false, perr
		}
		g.staged = &piped
		return nil, false, nil
	case KindAbsent:
		g.staged = nil
		if len(g.stack) == 0 {
			// absent root serializes to nothing
			return nil, false, io.EOF
		}
		// A pending inside a container resolved to an absent value; the
		// structural slot is already committed, so emit null.
		return nullLit, true, nil
	case KindPrimitive:
		g.staged = nil
		b, err := g.appendScalar(c.prim)
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	case KindSequence:
		g.staged = nil
		g.stack = append(g.stack, frame{kind: frameArray, elems: g.opt.sequence(c.seq)})
		return []byte{'['}, true, nil
	case KindKeyed:
		g.staged = nil
		g.stack = append(g.stack, frame{kind: frameObject, pairs: g.opt.keyed(c.pairs)})
		return []byte{'{'}, true, nil
	case KindTextSource:
		g.staged = nil
		g.stack = append(g.stack, frame{kind: frameText, text: c.text})
		return []byte{'"'}, true, nil
	case KindItemSource:
		g.staged = nil
		g.stack = append(g.stack, frame{kind: frameItems, items: c.items})
		return []byte{'['}, true, nil
	}
	return nil, false, g.fail(CodeEncodeError, errors.New("unclassifiable value"))
}

func (g *Generator) stepArray(f *frame) ([]byte, bool, error) {
	if f.idx >= len(f.elems) {
		nonEmpty := len(f.elems) > 0
		g.pop()
		return g.closer(']', nonEmpty), true, nil
	}
	if !f.sep {
		f.sep = true
		if s := g.separator(f.idx == 0); len(s) > 0 {
			return s, true, nil
		}
	}
	f.sep = false
	v := f.elems[f.idx]
	g.stage(v, strconv.Itoa(f.idx))
	f.idx++
	return nil, false, nil
}

func (g *Generator) stepObject(f *frame) ([]byte, bool, error) {
	if f.idx >= len(f.pairs) {
		nonEmpty := len(f.pairs) > 0
		g.pop()
		return g.closer('}', nonEmpty), true, nil
	}
	if !f.sep {
		f.sep = true
		if s := g.separator(f.idx == 0); len(s) > 0 {
			return s, true, nil
		}
	}
	if !f.keyed {
		f.keyed = true
		frag, err := g.keyFragment(f.pairs[f.idx].Key)
		if err != nil {
			return nil, false, err
		}
		return frag, true, nil
	}
	f.sep, f.keyed = false, false
	m := f.pairs[f.idx]
	g.stage(m.Value, m.Key)
	f.idx++
	return nil, false, nil
}

func (g *Generator) stepText(f *frame) ([]byte, bool, error) {
	if f.buf == nil {
		f.buf = make([]byte, textReadSize)
	}
	n, err := f.text.Read(f.buf)
	if n > 0 {
		frag, eerr := f.esc.escape(g.opt.scalar, f.buf[:n])
		if eerr != nil {
			return nil, false, g.fail(CodeEncodeError, eerr)
		}
		if len(frag) == 0 {
			return nil, false, nil
		}
		return frag, true, nil
	}
	if err == io.EOF {
		tail, eerr := f.esc.flush(g.opt.scalar)
		if eerr != nil {
			return nil, false, g.fail(CodeEncodeError, eerr)
		}
		g.pop()
		return append(tail, '"'), true, nil
	}
	if err != nil {
		return nil, false, g.fail(CodeSourceFailure, err)
	}
	return nil, false, nil
}

// stepItems drains the item-source adapter: one child generator at a time,
// serialized to completion before the next item is requested.
func (g *Generator) stepItems(ctx context.Context, f *frame) ([]byte, bool, error) {
	if f.child != nil {
		frag, err := f.child.Next(ctx)
		if err == io.EOF {
			f.child = nil
			return nil, false, nil
		}
		if err != nil {
			return nil, false, g.rebaseItemErr(err)
		}
		return frag, true, nil
	}
	if f.pending == nil {
		item, err := f.items.NextItem(ctx)
		if err == io.EOF {
			nonEmpty := f.count > 0
			g.pop()
			return g.closer(']', nonEmpty), true, nil
		}
		if err != nil {
			return nil, false, g.fail(CodeSourceFailure, err)
		}
		f.pending = &item
	}
	if !f.sep {
		f.sep = true
		if s := g.separator(f.count == 0); len(s) > 0 {
			return s, true, nil
		}
	}
	item := *f.pending
	f.pending, f.sep = nil, false
	f.count++
	f.child = newGenerator(g.opt, item, g.depth(), true)
	return nil, false, nil
}

func (g *Generator) stage(v any, key string) {
	g.staged, g.key, g.root = &v, key, false
}

// repipe runs the resolution of a pending value through the pipeline of the
// position it occupies.
func (g *Generator) repipe(v any) (any, error) {
	if !g.root {
		return g.opt.pipe(g.key, v), nil
	}
	if g.item {
		return g.opt.pipe("", v), nil
	}
	return g.opt.pipeRoot(v)
}

func (g *Generator) pop() {
	g.stack = g.stack[:len(g.stack)-1]
}

// ---- fragment construction ----

func (g *Generator) depth() int { return g.base + len(g.stack) }

func (g *Generator) separator(first bool) []byte {
	if g.opt.indent == "" {
		if first {
			return nil
		}
		return commaLit
	}
	var b []byte
	if !first {
		b = append(b, ',')
	}
	b = append(b, '\n')
	return appendIndent(b, g.opt.indent, g.depth())
}

// closer renders the closing bracket; call after popping the frame.
func (g *Generator) closer(ch byte, nonEmpty bool) []byte {
	if g.opt.indent == "" || !nonEmpty {
		return []byte{ch}
	}
	b := appendIndent([]byte{'\n'}, g.opt.indent, g.depth())
	return append(b, ch)
}

func (g *Generator) keyFragment(key string) ([]byte, error) {
	b, err := g.opt.scalar(nil, key)
	if err != nil {
		return nil, g.fail(CodeEncodeError, err)
	}
	b = append(b, ':')
	if g.opt.indent != "" {
		b = append(b, ' ')
	}
	return b, nil
}

func appendIndent(b []byte, indent string, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, indent...)
	}
	return b
}

// appendScalar encodes one primitive through the scalar driver. Non-finite
// floats become null; json.Number passes through after a syntax check.
func (g *Generator) appendScalar(v any) ([]byte, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nullLit, nil
		}
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nullLit, nil
		}
	case json.Number:
		if err := checkNumberSyntax(string(n)); err != nil {
			return nil, g.fail(CodeEncodeError, err)
		}
		return []byte(n), nil
	}
	b, err := g.opt.scalar(nil, v)
	if err != nil {
		return nil, g.fail(CodeEncodeError, err)
	}
	return b, nil
}

func checkNumberSyntax(s string) error {
	_, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return nil // out-of-range magnitudes are still valid JSON numbers
	}
	return err
}

// ---- error construction ----

func (g *Generator) fail(code string, cause error) error {
	if cause != nil && (errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded)) {
		return cause
	}
	if ie, ok := cause.(IssueError); ok {
		return ie
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return IssueError{SimpleIssue{Path: g.pathString(), Code: code, Message: msg, Cause: cause}}
}

// rebaseItemErr prefixes a child generator's issue path with the parent path
// so errors inside item sources point at the failing element. The item index
// itself comes from pathString's frameItems segment.
func (g *Generator) rebaseItemErr(err error) error {
	ie, ok := err.(IssueError)
	if !ok {
		return err
	}
	ie.Path = g.pathString() + ie.Path
	return ie
}

// pathString renders the JSON Pointer of the position currently being
// emitted, derived from the frame stack.
func (g *Generator) pathString() string {
	var b strings.Builder
	for i := range g.stack {
		f := &g.stack[i]
		switch f.kind {
		case frameArray:
			b.WriteByte('/')
			b.WriteString(strconv.Itoa(maxInt(f.idx-1, 0)))
		case frameObject:
			if f.idx > 0 {
				b.WriteByte('/')
				b.WriteString(escapePointerSegment(f.pairs[f.idx-1].Key))
			}
		case frameItems:
			// With a child in flight the failing item is count-1; a bare
			// NextItem failure points at the item that never arrived.
			b.WriteByte('/')
			if f.child != nil {
				b.WriteString(strconv.Itoa(f.count - 1))
			} else {
				b.WriteString(strconv.Itoa(f.count))
			}
		}
	}
	return b.String()
}

func escapePointerSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
