package lifecycle

import "time"

// CheckFreshness compares a client-supplied "last known" modification
// timestamp against the stored one and rejects stale writes. An empty
// expectation means the client did not request the check. This is not a
// lock: it only rejects writes made against an outdated snapshot, it never
// blocks other writers. It must run before the lock predicate and the
// transition check.
func CheckFreshness(stored time.Time, expected string) error {
	if expected == "" {
		return nil
	}
	want, err := time.Parse(time.RFC3339Nano, expected)
	if err != nil {
		return NewMalformedExpectation(expected)
	}
	if !want.Equal(stored) {
		return NewStaleWrite()
	}
	return nil
}
