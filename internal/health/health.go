// Package health describes the outcome of a dependency check.
package health

// State is the coarse outcome of a check.
type State string

const (
	StateOK              State = "ok"
	StateUnconfigured    State = "unconfigured"
	StateUnreachable     State = "unreachable"
	StateUnauthenticated State = "unauthenticated"
	StateUnhealthy       State = "unhealthy"
)

// Status is what a check reports to operators.
type Status struct {
	State  State  `json:"state"`
	Detail string `json:"detail,omitempty"`
}

// Healthy reports whether the dependency answered as expected.
func (s Status) Healthy() bool { return s.State == StateOK }

// OK returns a healthy status.
func OK() Status { return Status{State: StateOK} }

// Fail returns a status in the given state carrying detail.
func Fail(state State, detail string) Status {
	return Status{State: state, Detail: detail}
}

// Report aggregates the service checks served by the health endpoint.
type Report struct {
	LLM     Status
	Storage Status
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.LLM.Healthy() && r.Storage.Healthy() }

// Overall returns "healthy" or "degraded".
func (r Report) Overall() string {
	if r.Healthy() {
		return "healthy"
	}
	return "degraded"
}
