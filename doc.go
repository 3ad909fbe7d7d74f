// Package jsonify provides:
//
// - Incremental JSON serialization of arbitrary value trees as a pull-based
//   fragment stream (New/Stream), never materializing the full output
// - Embedded asynchronous values (Pending) and streaming sources (io.Reader
//   as a JSON string, ItemSource/channels as a JSON array) inside the tree
// - A JSON.stringify-compatible replacer pipeline (transform function or key
//   allowlist) plus indentation
// - A stable error model via Issues (JSON Pointer, code, output offset)
//
// Design policy:
// - Keep only public APIs in the root package; put the traversal engine under
//   internal/engine.
// - Scalar encoding goes through a pluggable driver (go-json by default);
//   see SetScalarDriver.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := jsonify.New(value)
//	n, err := s.Pipe(ctx, w)
//
//	out, err := jsonify.Stringify(ctx, value, jsonify.EncodeOpt{Indent: "  "})
package jsonify
