package domain

// ConversationState is the only state carried between loop iterations.
type ConversationState struct {
	// Attention means the next non-command utterance goes to the assistant.
	Attention bool
	Ended     bool
}

// Apply classifies u against the current state and returns the next state
// together with the action the controller has to carry out. It has no side
// effects; the first matching rule wins.
func (s ConversationState) Apply(u Utterance, phrases Phrases) (ConversationState, Action) {
	switch u.Outcome {
	case OutcomeCanceled:
		return s, ActionCanceled
	case OutcomeNoMatch:
		s.Attention = false
		return s, ActionNoMatch
	case OutcomeRecognized:
	default:
		return s, ActionIgnore
	}

	switch phrases.Match(u.Text) {
	case CommandStop:
		s.Ended = true
		return s, ActionStop
	case CommandWake:
		s.Attention = true
		return s, ActionAttend
	case CommandThanks:
		s.Attention = false
		s.Ended = true
		return s, ActionFarewell
	}

	if s.Attention {
		return s, ActionDispatch
	}
	return s, ActionIgnore
}
