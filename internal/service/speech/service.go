package speech

import (
	"context"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	"go.uber.org/zap"
)

// Service 组合播放参数与可选的服务端合成。
type Service struct {
	config *speech.SpeechConfig
	tts    *VolcengineTTSClient
}

// NewService 创建语音服务实例
func NewService(config *speech.SpeechConfig, logger *zap.Logger) *Service {
	if config == nil {
		config = &speech.SpeechConfig{Playback: speech.DefaultPlayback()}
	}
	return &Service{config: config, tts: NewVolcengineTTSClient(config, logger)}
}

// Playback 返回客户端渲染语音时使用的参数。
func (s *Service) Playback() speech.Playback {
	return s.config.Playback
}

// Capture 返回客户端语音识别配置。
func (s *Service) Capture() speech.Capture {
	return speech.DefaultCapture(s.config.TTSLanguage)
}

// SynthesisEnabled 表示是否可以在服务端合成音频。
func (s *Service) SynthesisEnabled() bool {
	return s.tts.Configured()
}

// SynthesizeSpeech 按请求参数合成，未指定的语速与音量取播放配置。
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	return s.tts.SynthesizeSpeechWS(ctx, req)
}

// SynthesizeToBuffer 文字转语音（返回字节数组）
func (s *Service) SynthesizeToBuffer(ctx context.Context, sessionID, text, voice string) (*speech.TTSResponse, error) {
	return s.SynthesizeSpeech(ctx, &speech.TTSRequest{
		SessionID: sessionID,
		Text:      text,
		Voice:     voice,
	})
}
