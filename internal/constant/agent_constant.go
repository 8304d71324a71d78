package constant

const (
	// Prompt sent to the LLM when the session already has history. The first
	// placeholder is the rendered history, the second the new user message.
	ChatPromptWithHistory = `You are a helpful AI assistant having a conversation. Here is our conversation history:

%s

User: %s

Please respond naturally and conversationally. Keep your response under 200 words.`

	// Prompt sent on the first exchange of a session.
	ChatPromptWithoutHistory = `You are a helpful AI assistant. Please respond to this user message naturally and conversationally. Keep your response under 200 words.

User: %s`
)

// Spoken fallback lines. These are returned to the client as the assistant
// text whenever a pipeline stage cannot do its real work, so the conversation
// keeps moving instead of surfacing a bare error.
const (
	SttUnavailableText = "I'm having trouble with my speech recognition right now. Could you please try again?"
	SttEmptyAudioText  = "I didn't hear anything. Could you please speak louder or closer to your microphone?"
	SttFailedText      = "I couldn't understand what you said. Please try speaking more clearly."
	SttNetworkText     = "I'm having network connectivity issues. Please check your internet connection and try again."
	SttServiceBusyText = "My speech recognition service is temporarily unavailable. Please try again in a moment."
	SttUnclearText     = "I'm having trouble understanding your audio. Please try speaking more clearly."

	LlmTimeoutText = "I'm taking a bit longer to think than usual. Could you please try asking your question again?"
	LlmFailedText  = "I'm having trouble connecting to my AI brain right now. Please check your internet connection and try again."

	FatalErrorText = "I'm sorry, I'm experiencing technical difficulties right now. Please try again in a moment."
)

// Streaming progress lines pushed to the client between pipeline stages.
const (
	StreamProcessingMessage   = "Processing audio..."
	StreamTranscribingMessage = "🎙️ Transcribing your voice..."
	StreamThinkingMessage     = "🤖 AI is thinking..."
	StreamSynthesizingMessage = "🔊 Generating audio..."
	StreamNewSessionMessage   = "New session created: %s"
	StreamAudioSaveFailedText = "Failed to process audio file. Please try again."
	StreamUnexpectedErrorText = "Unexpected error: Please try again."
)

// Heuristic responder lines, used when the LLM is disabled outright.
const (
	HeuristicGreetingNamedText = "Hello %s! I'm experiencing some technical difficulties with my AI systems right now, but I'm still here to help as best I can."
	HeuristicGreetingText      = "Hello! I'm having some technical difficulties with my AI brain right now, but I'm still here to chat when my systems are back online."
	HeuristicIdentityText      = "I'm an AI assistant, though I'm having trouble accessing my full capabilities right now. My AI systems are temporarily experiencing issues."
	HeuristicRecallNamedText   = "You told me your name is %s, and I remember that even though my AI systems are having issues right now."
	HeuristicRecallText        = "I'm having trouble with my memory systems right now. Could you remind me of your name?"
	HeuristicGratitudeText     = "You're welcome! I'm sorry I can't provide my full AI capabilities right now due to technical difficulties."
	HeuristicQuestionText      = "I'd love to help answer your question, but I'm experiencing connectivity issues with my AI knowledge systems right now. Please try again in a moment."
)

const (
	// VoiceBrowserFallback is reported as the voice when synthesis degrades
	// to client-side speech.
	VoiceBrowserFallback = "browser_fallback"

	AdminDisabledMessage = "Simulated %s error - API keys disabled"
	AdminRestoredMessage = "Restored %s API functionality"

	AppVersion = "2.0.0"
)
