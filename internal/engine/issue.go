package engine

// Issue codes shared with the public package. The root package re-exports
// these so callers never import internal/.
const (
	CodeSourceFailure      = "source_failure"
	CodePendingFailure     = "pending_failure"
	CodeMalformedTransform = "malformed_transform"
	CodeEncodeError        = "encode_error"
)

// SimpleIssue is a lightweight issue produced by the engine. The public
// package converts it into its own Issue type, attaching the output offset
// and a translated message.
type SimpleIssue struct {
	Path    string // JSON Pointer of the value being emitted when the failure occurred.
	Code    string
	Message string
	Cause   error
}

// IssueError carries a SimpleIssue across the error return of Next.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Code + ": " + e.Message
	}
	return e.Code + " at " + e.Path + ": " + e.Message
}

func (e IssueError) Unwrap() error { return e.Cause }
