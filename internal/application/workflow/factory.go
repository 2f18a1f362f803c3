package workflow

import (
	domainwf "github.com/garyjia/ggr-reconciler/internal/domain/workflow"
)

// BuildReportStateMachine creates a state machine configured for the report review lifecycle
func BuildReportStateMachine(initialState domainwf.State) (domainwf.StateMachine, error) {
	builder := domainwf.NewBuilder()

	// PENDING is the only state with outgoing transitions
	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	// APPROVED and REJECTED are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
