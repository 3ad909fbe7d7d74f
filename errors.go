package jsonify

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/jsonify-go/jsonify/internal/engine"
	"github.com/jsonify-go/jsonify/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSourceFailure      = eng.CodeSourceFailure      // a bound text/item source failed
	CodePendingFailure     = eng.CodePendingFailure     // a pending value rejected
	CodeMalformedTransform = eng.CodeMalformedTransform // sequence-root transform returned a non-sequence
	CodeEncodeError        = eng.CodeEncodeError        // the scalar driver rejected a value
)

// Issue represents a single serialization failure.
type Issue struct {
	Path    string // JSON Pointer of the value being emitted (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Offset is the number of output bytes emitted before the abort. Fragments
	// up to this offset were already delivered downstream and are not rolled
	// back.
	Offset int64
}

// Issues is a collection of serialization errors that implements error.
// Serialization is fail-fast, so in practice it carries one entry.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. pending_failure at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// toIssues converts an engine error into the public error model, attaching
// the output offset. Context errors pass through untouched so errors.Is keeps
// working against context.Canceled.
func toIssues(err error, offset int64) error {
	var ie eng.IssueError
	if !errors.As(err, &ie) {
		return err
	}
	msg := ie.Message
	if msg == "" {
		msg = i18n.T(ie.Code, nil)
	}
	return Issues{{Path: ie.Path, Code: ie.Code, Message: msg, Cause: ie.Cause, Offset: offset}}
}
