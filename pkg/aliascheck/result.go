package aliascheck

// Result is one file's evaluation handle: a deferred violation Stream or
// the extraction error that prevented one. Opening is memoized, so the
// underlying stream stays single-pass no matter how often Open is called.
type Result struct {
	File string

	open   func() (*Stream, error)
	stream *Stream
	err    error
	opened bool
}

// NewDeferredResult builds a Result whose evaluation runs on first Open.
// The serial dispatch strategy uses this so a file is not read until its
// result is consumed.
func NewDeferredResult(file string, open func() (*Stream, error)) *Result {
	return &Result{File: file, open: open}
}

// NewStreamResult builds a Result over an already-started stream.
func NewStreamResult(file string, stream *Stream) *Result {
	return &Result{File: file, stream: stream, opened: true}
}

// NewViolationsResult builds a Result over realized violations.
func NewViolationsResult(file string, violations []Violation) *Result {
	return NewStreamResult(file, NewSliceStream(violations))
}

// NewErrResult builds a Result carrying a fatal per-file error. The error
// stands in for the stream; it must not be mistaken for zero violations.
func NewErrResult(file string, err error) *Result {
	return &Result{File: file, err: err, opened: true}
}

// Open realizes the result, returning its violation stream or the file's
// fatal error. Repeated calls return the same (possibly part-consumed)
// stream.
func (r *Result) Open() (*Stream, error) {
	if !r.opened {
		r.opened = true
		r.stream, r.err = r.open()
	}

	if r.err != nil {
		return nil, r.err
	}

	return r.stream, nil
}
