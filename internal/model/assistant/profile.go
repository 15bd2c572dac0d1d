package assistant

// Profile captures the assistant persona exposed to the frontend and used to
// seed every conversation.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	SystemPrompt   string   `json:"-"`
	DomainContext  string   `json:"-"`
	WelcomeMessage string   `json:"welcomeMessage"`
	WelcomeInput   string   `json:"-"`
	Examples       []string `json:"examples"`
	VoiceID        string   `json:"voiceId,omitempty"`
	Footer         string   `json:"footer,omitempty"`
}

// Default returns the Crystal Group voice assistant persona.
func Default() Profile {
	return Profile{
		ID:    "crystal-group",
		Name:  "Crystal Group Voice Assistant",
		Title: "Cold chain logistics & real estate",
		SystemPrompt: "You are a helpful voice assistant for Crystal Group. Keep ALL responses to maximum 1-2 sentences. " +
			"For Crystal Group questions, provide specific company information. For other topics, give brief helpful answers. " +
			"Always respond as if speaking directly to the user.",
		DomainContext: "Context: Crystal Group is a diversified Indian business established in 1962, specializing in cold chain " +
			"logistics with facilities in Kolkata and Bhubaneswar, plus real estate development in Gujarat. " +
			"Keep response to 1-2 sentences maximum.",
		WelcomeMessage: "Hello! I'm your Crystal Group voice assistant. How can I help you today?",
		WelcomeInput:   "[System Welcome]",
		Examples: []string{
			`"What is Crystal Group?"`,
			`"Tell me about cold chain logistics"`,
			`"Where are Crystal Group offices?"`,
			`"What services does Crystal Group offer?"`,
		},
		VoiceID: "en_default",
		Footer:  "Crystal Group Voice Assistant • Powered by AI • Ask about our services and company",
	}
}
