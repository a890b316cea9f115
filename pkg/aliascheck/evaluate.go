package aliascheck

// Stream is a lazy, finite, single-pass sequence of Violations. Consuming
// it is destructive: each element is observed exactly once and a drained
// Stream never restarts. Cancellation is simply ceasing to pull.
type Stream struct {
	next func() (Violation, bool)
}

// Next returns the next Violation, or ok=false once the stream is
// exhausted. After ok=false every subsequent call returns ok=false.
func (s *Stream) Next() (v Violation, ok bool) {
	if s.next == nil {
		return Violation{}, false
	}

	return s.next()
}

// Drain pulls the stream to exhaustion and returns the remaining
// violations in order.
func (s *Stream) Drain() []Violation {
	var out []Violation

	for {
		v, ok := s.Next()
		if !ok {
			return out
		}

		out = append(out, v)
	}
}

// NewSliceStream wraps already-realized violations in a single-pass
// Stream. The pool and process dispatch strategies realize violations in
// their workers and replay them through this.
func NewSliceStream(violations []Violation) *Stream {
	i := 0

	return &Stream{next: func() (Violation, bool) {
		if i >= len(violations) {
			return Violation{}, false
		}

		v := violations[i]
		i++

		return v, true
	}}
}

// Evaluate compares a file's ImportTable against the allowed-alias policy
// and returns the resulting violation Stream. Violations are produced on
// demand as the stream is pulled.
//
// Qualified names are visited in sorted order; within a name, bindings in
// table order. A name absent from the policy (or mapped to an empty alias
// list) yields one violation per binding, reported with no allowed
// aliases. A name whose allowed set equals the observed alias set exactly
// yields nothing. Otherwise every binding is paired with every allowed
// alias it does not match, one violation per pair, each carrying the full
// allowed set — a binding matching none of k allowed aliases therefore
// yields k violations. The skip is strictly set-level: partial overlap
// suppresses nothing.
//
// When lazy is set the stream terminates immediately after its first
// violation; the remaining names are never visited.
func Evaluate(allowed map[string][]string, table ImportTable, file string, lazy bool) *Stream {
	names := table.Qualnames()

	var (
		queue []Violation
		ni    int
		done  bool
	)

	refill := func() {
		for len(queue) == 0 && ni < len(names) {
			name := names[ni]
			ni++

			bindings := table[name]
			if len(bindings) == 0 {
				continue
			}

			permitted := allowed[name]
			if len(permitted) == 0 {
				for _, b := range bindings {
					queue = append(queue, Violation{File: file, Qualname: name, Binding: b})
				}

				continue
			}

			if aliasSetEqual(bindings, permitted) {
				continue
			}

			for _, b := range bindings {
				for _, a := range permitted {
					if a != b.AliasKey() {
						queue = append(queue, Violation{File: file, Qualname: name, Binding: b, Allowed: permitted})
					}
				}
			}
		}
	}

	return &Stream{next: func() (Violation, bool) {
		if done {
			return Violation{}, false
		}

		refill()

		if len(queue) == 0 {
			done = true

			return Violation{}, false
		}

		v := queue[0]
		queue = queue[1:]

		if lazy {
			done = true
			queue = nil
		}

		return v, true
	}}
}
