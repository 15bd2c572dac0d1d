package speech

// SpeechConfig 语音合成服务配置
type SpeechConfig struct {
	// Volcengine 配置
	AppID       string `json:"appId"`
	AccessToken string `json:"accessToken"`
	APIKey      string `json:"apiKey,omitempty"`
	BaseURL     string `json:"baseUrl"`

	// TTS 配置
	TTSVoice    string   `json:"ttsVoice"`
	TTSLanguage string   `json:"ttsLanguage"`
	Timeout     int      `json:"timeout"` // seconds
	SampleRate  int      `json:"sampleRate,omitempty"`
	Playback    Playback `json:"playback"`
}

// Playback describes how replies are rendered to audio. Rate and Volume are
// also forwarded to the upstream synthesiser as speed/volume ratios.
type Playback struct {
	Rate   float32 `json:"rate"`
	Pitch  float32 `json:"pitch"`
	Volume float32 `json:"volume"`
}

// DefaultPlayback is the assistant's speaking voice: slightly slow, softer.
func DefaultPlayback() Playback {
	return Playback{Rate: 0.9, Pitch: 1, Volume: 0.8}
}

// Capture describes how the client should run speech recognition.
type Capture struct {
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interimResults"`
	Language       string `json:"language"`
}

// DefaultCapture returns single-utterance capture with interim results.
func DefaultCapture(language string) Capture {
	if language == "" {
		language = "en-US"
	}
	return Capture{Continuous: false, InterimResults: true, Language: language}
}
