// Package errors provides error annotation with structured logging attributes.
//
// It is a drop-in replacement for the standard library errors package with
// the addition of [Wrap] for attaching [slog.Attr] annotations and source
// locations to errors, and [SlogError] for rendering the whole chain as a
// single structured attribute.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, an optional cause, slog annotations, and
// the program counter of the call site that created it.
type annotatedError struct {
	msg   string
	cause error
	attrs []slog.Attr
	pc    uintptr
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// callerPC returns the program counter skip frames above the caller of callerPC.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	// skip runtime.Callers and callerPC itself.
	n := runtime.Callers(skip+2, pcs[:]) //nolint:mnd // see above
	if n == 0 {
		return 0
	}
	return pcs[0]
}

// New returns an annotated error with the given message and the caller's
// source location.
func New(text string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:   text,
		cause: nil,
		attrs: attrs,
		pc:    callerPC(1),
	}
}

// NewSentinel returns a plain sentinel error without annotations or source
// location. Use it for package-level sentinel values compared with [Is].
func NewSentinel(text string) error {
	return stderrors.New(text)
}

// Wrap annotates err with a message and optional [slog.Attr]. A nil err is
// allowed and results in an error carrying only the message.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:   msg,
		cause: err,
		attrs: attrs,
		pc:    callerPC(1),
	}
}

// Errorf is like [fmt.Errorf] but records the caller's source location.
func Errorf(format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	return &annotatedError{
		msg:   wrapped.Error(),
		cause: stderrors.Unwrap(wrapped),
		attrs: nil,
		pc:    callerPC(1),
	}
}

// DecoratePanic converts a value recovered from a panic into an annotated
// error pointing at the deferred recovery site.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	var cause error
	if err, ok := recovered.(error); ok {
		cause = err
	} else {
		cause = stderrors.New(fmt.Sprint(recovered))
	}
	return &annotatedError{
		msg:   "panic",
		cause: cause,
		attrs: nil,
		pc:    callerPC(1),
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// SlogError renders err as a single grouped [slog.Attr] containing the error
// message, the annotations collected from the whole error chain, and the
// source location of the outermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("msg", "<nil>"))
	}

	var (
		annotations []slog.Attr
		source      string
	)
	walkChain(err, func(ae *annotatedError) {
		annotations = append(annotations, ae.attrs...)
		if source == "" && ae.pc != 0 {
			frame, _ := runtime.CallersFrames([]uintptr{ae.pc}).Next()
			if frame.File != "" {
				source = fmt.Sprintf("%s:%d", shortFile(frame.File), frame.Line)
			}
		}
	})

	attrs := []slog.Attr{slog.String("msg", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Attr{Key: "annotations", Value: slog.GroupValue(annotations...)})
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// walkChain visits every annotated error in err's tree in outermost-first
// order, following both single and joined unwrapping.
func walkChain(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // deliberate single-level check, children visited below
		visit(ae)
	}
	switch unwrapped := err.(type) { //nolint:errorlint // walking the tree manually
	case interface{ Unwrap() error }:
		walkChain(unwrapped.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, child := range unwrapped.Unwrap() {
			walkChain(child, visit)
		}
	}
}

// shortFile trims the file path down to the last path element.
func shortFile(file string) string {
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		return file[idx+1:]
	}
	return file
}
