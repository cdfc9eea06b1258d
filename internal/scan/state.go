package scan

// State is the lifecycle state of one scan invocation. States advance
// strictly forward through the pipeline stages; Cancelled is terminal and
// reachable from any state except Done.
type State string

const (
	StatePending      State = "pending"
	StateSynthesizing State = "synthesizing"
	StateEnhancing    State = "enhancing"
	StateInvoking     State = "invoking"
	StateEvaluating   State = "evaluating"
	StateAggregating  State = "aggregating"
	StateDone         State = "done"
	StateCancelled    State = "cancelled"
)

// String returns the string representation of the State.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether the scan has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}
