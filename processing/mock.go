package processing

import "context"

const (
	MockAudioURL = "https://example.com/mock-audio.mp3"
	MockVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"
)

type mockNarrator struct{}

func (mockNarrator) Narrate(_ context.Context, transcript string) (string, error) {
	return "This is a brainrot version of: " + transcript, nil
}

type mockSynthesizer struct{}

func (mockSynthesizer) Synthesize(context.Context, string) (string, error) {
	return MockAudioURL, nil
}

type mockRenderer struct{}

func (mockRenderer) Render(context.Context, string) (string, error) {
	return MockVideoURL, nil
}

// MockVideoStages returns canned outputs for every stage and never calls out.
func MockVideoStages() VideoStages {
	return VideoStages{
		Narrator: mockNarrator{},
		Speech:   mockSynthesizer{},
		Video:    mockRenderer{},
	}
}
