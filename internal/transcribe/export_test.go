package transcribe

// NewWhisperWithClient creates a WhisperTranscriber with an injected
// audioTranscriber, allowing tests to mock the OpenAI client.
func NewWhisperWithClient(client audioTranscriber, opts ...WhisperOption) *WhisperTranscriber {
	return newWhisper(client, opts...)
}

// AudioTranscriber re-exports the private interface for test mocks.
type AudioTranscriber = audioTranscriber
