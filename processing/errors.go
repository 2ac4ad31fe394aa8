package processing

import "errors"

// Failure kinds for the video pipeline stages. Stage errors wrap one of these.
var (
	ErrGeneration  = errors.New("failed to generate narration")
	ErrSynthesis   = errors.New("failed to synthesize narration audio")
	ErrRender      = errors.New("failed to render video")
	ErrComposition = errors.New("failed to compose video")
)

const defaultProviderMessage = "Fal generation failed. Check your function slug and credentials."

// ValidationError is a bad or missing request field. Message is user facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError carries the upstream message of a failed draft generation.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(err error) *ProviderError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = defaultProviderMessage
	}
	return &ProviderError{Message: msg, Err: err}
}
