package launcher

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrorCode identifies a taxonomy variant
type ErrorCode string

const (
	// Lifecycle errors
	ErrorCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrorCodeDisposed          ErrorCode = "LAUNCHER_DISPOSED"
	ErrorCodeHealthCheckFailed ErrorCode = "HEALTH_CHECK_FAILED"

	// Reachability errors
	ErrorCodeURLNotAccessible ErrorCode = "URL_NOT_ACCESSIBLE"
	ErrorCodeNetwork          ErrorCode = "NETWORK_ERROR"

	// Local content errors
	ErrorCodeIndexNotFound      ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeFileAccessDenied   ErrorCode = "FILE_ACCESS_DENIED"
	ErrorCodeInvalidFileContent ErrorCode = "INVALID_FILE_CONTENT"
	ErrorCodeSymbolicLink       ErrorCode = "SYMBOLIC_LINK_ERROR"
)

// Recoverable reports whether retrying later can succeed without
// changing the application elsewhere.
func (c ErrorCode) Recoverable() bool {
	switch c {
	case ErrorCodeInvalidState, ErrorCodeDisposed:
		return false
	default:
		return true
	}
}

// LinkErrorKind narrows SYMBOLIC_LINK_ERROR
type LinkErrorKind string

const (
	LinkCircularReference  LinkErrorKind = "circular_reference"
	LinkBroken             LinkErrorKind = "broken_link"
	LinkExcessiveRecursion LinkErrorKind = "excessive_recursion"
	LinkUnknown            LinkErrorKind = "unknown"
)

// LaunchError is the single error type for every launch failure.
// Variant-specific payload lives in the optional fields; Code tells
// which of them are populated.
type LaunchError struct {
	Code    ErrorCode
	Message string
	AppID   string

	// Path is the offending file or the probed address
	Path string

	// SearchedPaths lists every candidate tried by the index locator
	SearchedPaths []string

	// AccessErrors maps a path to the error hit while reading it
	AccessErrors map[string]string

	// LinkKind is set for SYMBOLIC_LINK_ERROR only
	LinkKind LinkErrorKind

	// StatusCode is set when a probe got an answer
	StatusCode int

	Context    map[string]interface{}
	Cause      error
	Suggestion string
}

var (
	userPolicy    = bluemonday.StrictPolicy()
	angleStripper = strings.NewReplacer("<", "", ">", "")
)

// Error implements the error interface
func (e *LaunchError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	if e.LinkKind != "" {
		parts = append(parts, "kind="+string(e.LinkKind))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, "; ")
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *LaunchError) WithContext(key string, value interface{}) *LaunchError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause to the error
func (e *LaunchError) WithCause(cause error) *LaunchError {
	e.Cause = cause
	return e
}

// WithSuggestion adds an actionable suggestion to the error
func (e *LaunchError) WithSuggestion(suggestion string) *LaunchError {
	e.Suggestion = suggestion
	return e
}

// withApp tags the error with the application it belongs to
func (e *LaunchError) withApp(appID string) *LaunchError {
	if e.AppID == "" {
		e.AppID = appID
	}
	return e
}

// UserMessage renders the concise, markup-free message for end users.
// Paths, causes and access errors are left out.
func (e *LaunchError) UserMessage() string {
	var msg string
	switch e.Code {
	case ErrorCodeInvalidState:
		msg = "This application is not ready to be launched."
	case ErrorCodeDisposed:
		msg = "The launcher is shutting down."
	case ErrorCodeHealthCheckFailed:
		msg = "The application stopped responding."
	case ErrorCodeURLNotAccessible, ErrorCodeNetwork:
		msg = "The application could not be reached."
	case ErrorCodeIndexNotFound, ErrorCodeFileAccessDenied, ErrorCodeInvalidFileContent, ErrorCodeSymbolicLink:
		msg = "The application files could not be loaded."
	default:
		msg = "The application could not be launched."
	}

	if detail := sanitizeText(e.Message); detail != "" {
		if !strings.HasSuffix(detail, ".") {
			detail += "."
		}
		msg += " " + detail
	}
	if e.Code.Recoverable() {
		msg += " Please try again."
	}
	return msg
}

// DetailedReport renders every piece of diagnostic context, including
// nested causes. Intended for logs and the diagnostics endpoint.
func (e *LaunchError) DetailedReport() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", e.Code, e.Message)
	if e.AppID != "" {
		fmt.Fprintf(&b, "  application: %s\n", e.AppID)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, "  path: %s\n", e.Path)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "  status: %d\n", e.StatusCode)
	}
	if e.LinkKind != "" {
		fmt.Fprintf(&b, "  link error: %s\n", e.LinkKind)
	}

	if len(e.SearchedPaths) > 0 {
		b.WriteString("  searched paths:\n")
		for _, p := range e.SearchedPaths {
			fmt.Fprintf(&b, "    - %s\n", p)
		}
	}

	if len(e.AccessErrors) > 0 {
		b.WriteString("  access errors:\n")
		for _, p := range sortedKeys(e.AccessErrors) {
			fmt.Fprintf(&b, "    - %s: %s\n", p, e.AccessErrors[p])
		}
	}

	if len(e.Context) > 0 {
		b.WriteString("  context:\n")
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s=%v\n", k, e.Context[k])
		}
	}

	depth := 0
	for cause := e.Cause; cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "  %scaused by: %v\n", strings.Repeat("  ", depth), cause)
		depth++
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  suggestion: %s\n", e.Suggestion)
	}

	return strings.TrimRight(b.String(), "\n")
}

// sanitizeText strips markup and leaves plain text
func sanitizeText(s string) string {
	text := html.UnescapeString(userPolicy.Sanitize(s))
	return strings.TrimSpace(angleStripper.Replace(text))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewError creates a LaunchError with the given code and message
func NewError(code ErrorCode, message string) *LaunchError {
	return &LaunchError{
		Code:    code,
		Message: message,
	}
}

// ErrInvalidState creates an error for an application that cannot be launched
func ErrInvalidState(appID string, status string) *LaunchError {
	return NewError(ErrorCodeInvalidState,
		fmt.Sprintf("Application '%s' is %s and cannot be launched", appID, status)).
		withApp(appID).
		WithContext("status", status).
		WithSuggestion("Deploy the application or mark it ready before launching")
}

// ErrDisposed creates an error for operations after the launcher was disposed
func ErrDisposed(appID string) *LaunchError {
	return NewError(ErrorCodeDisposed, "Launcher has been disposed").withApp(appID)
}

// ErrURLNotAccessible creates an error for a probe answered with a non-2xx status
func ErrURLNotAccessible(appID, address string, status int) *LaunchError {
	e := NewError(ErrorCodeURLNotAccessible,
		fmt.Sprintf("Application '%s' answered with status %d", appID, status)).
		withApp(appID).
		WithSuggestion(fmt.Sprintf("Verify the application is serving: curl -i %s", address))
	e.Path = address
	e.StatusCode = status
	return e
}

// ErrNetwork creates an error for a probe that failed to get any answer
func ErrNetwork(appID, address string, cause error) *LaunchError {
	e := NewError(ErrorCodeNetwork,
		fmt.Sprintf("Application '%s' is unreachable", appID)).
		withApp(appID).
		WithCause(cause).
		WithSuggestion("Check that the application server is running and the address is correct")
	e.Path = address
	return e
}

// ErrHealthCheckFailed creates an error for a running process that failed a probe
func ErrHealthCheckFailed(appID, address string, cause error) *LaunchError {
	e := NewError(ErrorCodeHealthCheckFailed,
		fmt.Sprintf("Application '%s' failed its health check", appID)).
		withApp(appID).
		WithCause(cause).
		WithSuggestion("Restart the application once its server is back")
	e.Path = address
	return e
}

// ErrIndexNotFound creates an error for an exhausted list of index candidates
func ErrIndexNotFound(contentDir string, searched []string, accessErrors map[string]string) *LaunchError {
	e := NewError(ErrorCodeIndexNotFound,
		fmt.Sprintf("No index document found after searching %d locations", len(searched))).
		WithSuggestion("Build the application so that an index.html exists in one of the searched paths")
	e.Path = contentDir
	e.SearchedPaths = append([]string(nil), searched...)
	if len(accessErrors) > 0 {
		e.AccessErrors = make(map[string]string, len(accessErrors))
		for k, v := range accessErrors {
			e.AccessErrors[k] = v
		}
	}
	return e
}

// ErrFileAccessDenied creates an error for a path that cannot be read
func ErrFileAccessDenied(path string, cause error) *LaunchError {
	e := NewError(ErrorCodeFileAccessDenied, "Permission denied reading application files").
		WithCause(cause).
		WithSuggestion(fmt.Sprintf("Grant read access: chmod a+r %s", path))
	e.Path = path
	return e
}

// ErrInvalidFileContent creates an error for content failing a type or format check
func ErrInvalidFileContent(path, reason string) *LaunchError {
	e := NewError(ErrorCodeInvalidFileContent, "Application index is not a valid HTML document").
		WithContext("reason", reason)
	e.Path = path
	return e
}

// ErrSymbolicLink creates an error for a symbolic link that cannot be resolved
func ErrSymbolicLink(kind LinkErrorKind, path string, cause error) *LaunchError {
	msg := "Symbolic link could not be resolved"
	switch kind {
	case LinkCircularReference:
		msg = "Symbolic link points back to itself"
	case LinkBroken:
		msg = "Symbolic link target does not exist"
	case LinkExcessiveRecursion:
		msg = "Too many levels of symbolic links"
	}

	e := NewError(ErrorCodeSymbolicLink, msg).WithCause(cause)
	e.Path = path
	e.LinkKind = kind
	return e
}

// IsErrorCode checks if an error is a LaunchError with the given code
func IsErrorCode(err error, code ErrorCode) bool {
	var le *LaunchError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) (ErrorCode, bool) {
	var le *LaunchError
	if errors.As(err, &le) {
		return le.Code, true
	}
	return "", false
}

// AsLaunchError extracts the LaunchError from an error chain
func AsLaunchError(err error) (*LaunchError, bool) {
	var le *LaunchError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
