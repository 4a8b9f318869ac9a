package domain

import "fmt"

type Outcome string

const (
	OutcomeRecognized Outcome = "recognized"
	OutcomeNoMatch    Outcome = "no_match"
	OutcomeCanceled   Outcome = "canceled"
)

// CancellationReason mirrors the reasons the speech service gives for
// aborting a recognition or synthesis request.
type CancellationReason string

const (
	CancellationError           CancellationReason = "Error"
	CancellationEndOfStream     CancellationReason = "EndOfStream"
	CancellationCancelledByUser CancellationReason = "CancelledByUser"
)

type Cancellation struct {
	Reason CancellationReason
	// ErrorDetails is only set when Reason is CancellationError.
	ErrorDetails string
}

func (c Cancellation) String() string {
	if c.Reason == CancellationError && c.ErrorDetails != "" {
		return fmt.Sprintf("%s: %s", c.Reason, c.ErrorDetails)
	}
	return string(c.Reason)
}

// Utterance is the result of a single recognition attempt.
type Utterance struct {
	Text         string
	Outcome      Outcome
	Cancellation *Cancellation
}

func Recognized(text string) Utterance {
	return Utterance{Text: text, Outcome: OutcomeRecognized}
}

func NoMatch(text string) Utterance {
	return Utterance{Text: text, Outcome: OutcomeNoMatch}
}

func Canceled(reason CancellationReason, details string) Utterance {
	c := &Cancellation{Reason: reason}
	if reason == CancellationError {
		c.ErrorDetails = details
	}
	return Utterance{Outcome: OutcomeCanceled, Cancellation: c}
}

// Reply is the text a completion produced for one prompt.
type Reply struct {
	Text string
}

type SynthesisOutcome string

const (
	SynthesisCompleted SynthesisOutcome = "completed"
	SynthesisCanceled  SynthesisOutcome = "canceled"
)

type SynthesisResult struct {
	Text         string
	Outcome      SynthesisOutcome
	Cancellation *Cancellation
}

func SynthesisDone(text string) SynthesisResult {
	return SynthesisResult{Text: text, Outcome: SynthesisCompleted}
}

func SynthesisAborted(text string, reason CancellationReason, details string) SynthesisResult {
	c := &Cancellation{Reason: reason}
	if reason == CancellationError {
		c.ErrorDetails = details
	}
	return SynthesisResult{Text: text, Outcome: SynthesisCanceled, Cancellation: c}
}
