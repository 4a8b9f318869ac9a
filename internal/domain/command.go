package domain

// Action is the verdict the conversation state machine reaches for one utterance.
type Action string

const (
	ActionCanceled Action = "canceled"
	ActionNoMatch  Action = "no_match"
	ActionStop     Action = "stop"
	ActionAttend   Action = "attend"
	ActionFarewell Action = "farewell"
	ActionDispatch Action = "dispatch"
	ActionIgnore   Action = "ignore"
)

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

const (
	DefaultStopPhrase   = "Stop."
	DefaultWakePhrase   = "Hey, Indigo."
	DefaultThanksPhrase = "Thanks Indigo."
)

// Command identifies which literal control phrase an utterance matched.
type Command string

const (
	CommandNone   Command = ""
	CommandStop   Command = "stop"
	CommandWake   Command = "wake"
	CommandThanks Command = "thanks"
)

// Phrases holds the literal control phrases. Matching is exact: the recognizer
// output includes its own casing and punctuation, and so must these.
type Phrases struct {
	Stop   string
	Wake   string
	Thanks string
}

func DefaultPhrases() Phrases {
	return Phrases{
		Stop:   DefaultStopPhrase,
		Wake:   DefaultWakePhrase,
		Thanks: DefaultThanksPhrase,
	}
}

// Match returns the control command text corresponds to, checked in
// stop, wake, thanks order.
func (p Phrases) Match(text string) Command {
	switch text {
	case p.Stop:
		return CommandStop
	case p.Wake:
		return CommandWake
	case p.Thanks:
		return CommandThanks
	default:
		return CommandNone
	}
}
