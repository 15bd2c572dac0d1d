package voice

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// outbound 串行化同一连接上的写操作。
type outbound struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

func newOutbound(conn *websocket.Conn, sessionID string) *outbound {
	return &outbound{conn: conn, sessionID: sessionID}
}

func (o *outbound) send(kind string, data interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return o.conn.WriteJSON(outgoingMessage{
		Type:      kind,
		SessionID: o.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (o *outbound) sendError(message string) {
	_ = o.send("error", map[string]string{"message": message})
}

type speakPayload struct {
	Text   string  `json:"text"`
	Rate   float32 `json:"rate"`
	Pitch  float32 `json:"pitch"`
	Volume float32 `json:"volume"`
}

type ttsPayload struct {
	Audio    string `json:"audio"`
	Format   string `json:"format"`
	Duration int64  `json:"duration,omitempty"`
}

// socketSpeaker 让浏览器朗读回复；配置了 TTS 时额外推送合成音频。
type socketSpeaker struct {
	out     *outbound
	voice   Voice
	voiceID string
	logger  *zap.Logger
}

func newSocketSpeaker(out *outbound, voice Voice, voiceID string, logger *zap.Logger) *socketSpeaker {
	return &socketSpeaker{out: out, voice: voice, voiceID: voiceID, logger: logger}
}

func (s *socketSpeaker) Speak(ctx context.Context, text string) error {
	playback := s.voice.Playback()
	if err := s.out.send("speak", speakPayload{
		Text:   text,
		Rate:   playback.Rate,
		Pitch:  playback.Pitch,
		Volume: playback.Volume,
	}); err != nil {
		return fmt.Errorf("send speak: %w", err)
	}

	if !s.voice.SynthesisEnabled() {
		return nil
	}

	resp, err := s.voice.SynthesizeToBuffer(ctx, s.out.sessionID, text, s.voiceID)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	s.logger.Debug("tts ready", zap.Int("bytes", len(resp.AudioData)))

	return s.out.send("tts", ttsPayload{
		Audio:    base64.StdEncoding.EncodeToString(resp.AudioData),
		Format:   resp.Format,
		Duration: resp.Duration,
	})
}

// Stop 通知客户端中断当前朗读。
func (s *socketSpeaker) Stop() {
	if err := s.out.send("silence", nil); err != nil {
		s.logger.Debug("send silence failed", zap.Error(err))
	}
}
