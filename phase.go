package predicate

// Phase identifies a stage of transaction processing. Cached node
// results are gated on the phase: a node evaluated in an earlier phase
// may need to be re-armed before a later phase, depending on whether
// its behavior is phase-sensitive.
//
// Phases are ordered; comparing two phases with < and > reflects the
// order in which a transaction passes through them.
type Phase int

const (
	// PhaseNone is the zero phase. A freshly constructed
	// NodeEvalState reports PhaseNone until evaluation records a
	// real phase.
	PhaseNone Phase = iota
	PhaseRequestHeader
	PhaseRequestBody
	PhaseResponseHeader
	PhaseResponseBody
	PhasePostprocess
	PhaseLogging
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseRequestHeader:
		return "request_header"
	case PhaseRequestBody:
		return "request_body"
	case PhaseResponseHeader:
		return "response_header"
	case PhaseResponseBody:
		return "response_body"
	case PhasePostprocess:
		return "postprocess"
	case PhaseLogging:
		return "logging"
	default:
		return "invalid"
	}
}
