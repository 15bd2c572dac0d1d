package speech

import "context"

// Speaker plays text back to the user. Speak replaces any utterance still in
// progress; Stop silences playback.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop()
}

// Discard is a Speaker that plays nothing.
type Discard struct{}

func (Discard) Speak(context.Context, string) error { return nil }

func (Discard) Stop() {}
