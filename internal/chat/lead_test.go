package chat

import "testing"

func TestShouldPromptLead_Timings(t *testing.T) {
	tests := []struct {
		timing    LeadTiming
		userTurns int
		want      bool
	}{
		{LeadAfterFirst, 1, true},
		{LeadAfterFirst, 2, false},
		{LeadAfterTwo, 1, false},
		{LeadAfterTwo, 2, true},
		{LeadAtEnd, 2, false},
		{LeadAtEnd, 3, true},
		{LeadAtEnd, 4, false},
		// "immediate" resolves at widget bootstrap, never during a turn.
		{LeadImmediate, 0, false},
		{LeadImmediate, 1, false},
		{LeadTiming("bogus"), 1, false},
	}
	for _, tt := range tests {
		got := ShouldPromptLead(true, tt.timing, tt.userTurns, false)
		if got != tt.want {
			t.Errorf("ShouldPromptLead(%q, turns=%d) = %v, want %v",
				tt.timing, tt.userTurns, got, tt.want)
		}
	}
}

func TestShouldPromptLead_Disabled(t *testing.T) {
	if ShouldPromptLead(false, LeadAfterFirst, 1, false) {
		t.Error("signal fired while lead collection is disabled")
	}
}

func TestShouldPromptLead_OncePerSession(t *testing.T) {
	if !ShouldPromptLead(true, LeadAfterFirst, 1, false) {
		t.Fatal("expected signal on first matching turn")
	}
	if ShouldPromptLead(true, LeadAfterFirst, 1, true) {
		t.Error("signal fired again after already prompted")
	}
}

func TestShowLeadFormOnOpen(t *testing.T) {
	if !ShowLeadFormOnOpen(true, LeadImmediate) {
		t.Error("immediate timing should show the form on open")
	}
	if ShowLeadFormOnOpen(false, LeadImmediate) {
		t.Error("disabled collection should never show the form")
	}
	if ShowLeadFormOnOpen(true, LeadAfterFirst) {
		t.Error("after_first should not show the form on open")
	}
}
