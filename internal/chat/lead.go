package chat

// lead.go computes the lead-capture trigger signal. The orchestrator only
// decides WHEN to ask for contact details; rendering the form and upserting
// the contact into the CRM happen outside this package.

// LeadTiming names when the contact form should appear during a session.
type LeadTiming string

const (
	// LeadImmediate shows the form before the first message is sent.
	// It is resolved at widget bootstrap (user turn count 0), so the
	// per-turn signal never fires for it.
	LeadImmediate LeadTiming = "immediate"

	// LeadAfterFirst fires after the visitor's first message.
	LeadAfterFirst LeadTiming = "after_first"

	// LeadAfterTwo fires after the visitor's second message.
	LeadAfterTwo LeadTiming = "after_two"

	// LeadAtEnd fires after the visitor's third message.
	LeadAtEnd LeadTiming = "end"
)

// leadThreshold returns the user-turn count at which timing fires, or -1
// for timings that never fire during a turn.
func leadThreshold(timing LeadTiming) int {
	switch timing {
	case LeadImmediate:
		return 0
	case LeadAfterFirst:
		return 1
	case LeadAfterTwo:
		return 2
	case LeadAtEnd:
		return 3
	default:
		return -1
	}
}

// ShouldPromptLead reports whether the contact form should be shown after a
// turn that brought the session's user-turn counter to userTurns. It fires
// when the counter matches the configured threshold exactly, and at most
// once per session (alreadyPrompted suppresses repeats).
func ShouldPromptLead(enabled bool, timing LeadTiming, userTurns int, alreadyPrompted bool) bool {
	if !enabled || alreadyPrompted {
		return false
	}
	t := leadThreshold(timing)
	return t > 0 && userTurns == t
}

// ShowLeadFormOnOpen reports whether the widget should present the contact
// form before any message is exchanged.
func ShowLeadFormOnOpen(enabled bool, timing LeadTiming) bool {
	return enabled && timing == LeadImmediate
}
