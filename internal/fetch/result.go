package fetch

// Outcome classifies a fetch result.
type Outcome int

// Fetch outcomes. Expected failures (soft) and unexpected ones (hard) are
// both reported as values rather than errors so that callers branch with
// a switch instead of unwinding; neither aborts a batch.
const (
	// OutcomeOK means the body was obtained, from cache or network.
	OutcomeOK Outcome = iota

	// OutcomeSoftFailure means an expected failure occurred: non-2xx
	// status, transport or TLS error, or a payload that failed to decode.
	OutcomeSoftFailure

	// OutcomeHardFailure means something unexpected happened. It is still
	// contained to the one request, but worth attention in logs.
	OutcomeHardFailure
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSoftFailure:
		return "soft-failure"
	case OutcomeHardFailure:
		return "hard-failure"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a cache-or-fetch operation.
type Result struct {
	// Outcome classifies the result.
	Outcome Outcome

	// Body is the decoded response body: a string for text and XML, a
	// decoded any for JSON. Nil on failure.
	Body any

	// Reason carries the classified failure cause. Nil on success.
	Reason error
}

// Ok builds a success result.
func Ok(body any) Result {
	return Result{Outcome: OutcomeOK, Body: body}
}

// Soft builds a soft-failure result.
func Soft(reason error) Result {
	return Result{Outcome: OutcomeSoftFailure, Reason: reason}
}

// Hard builds a hard-failure result.
func Hard(reason error) Result {
	return Result{Outcome: OutcomeHardFailure, Reason: reason}
}

// OK reports whether a body was obtained.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Text returns the body as a string, or "" when the body is absent or not
// textual.
func (r Result) Text() string {
	s, _ := r.Body.(string)
	return s
}
