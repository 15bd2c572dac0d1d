package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	speechmodel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
)

func TestResolveTTSResourceCandidates(t *testing.T) {
	tests := []struct {
		name  string
		voice string
		want  []string
	}{
		{
			name:  "default voice",
			voice: "",
			want:  []string{"volc.service_type.10029", "seed-tts-2.0"},
		},
		{
			name:  "mega clone voice",
			voice: "S_clone_speaker",
			want:  []string{"volc.megatts.default"},
		},
		{
			name:  "bigtts voice",
			voice: "en_female_amy_jupiter_bigtts",
			want:  []string{"seed-tts-2.0", "volc.service_type.10029"},
		},
		{
			name:  "legacy 1.0 voice",
			voice: "en_male_organizer",
			want:  []string{"volc.service_type.10029", "seed-tts-2.0"},
		},
	}

	for _, tt := range tests {
		got := resolveTTSResourceCandidates(tt.voice)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: resolveTTSResourceCandidates(%q) = %v, want %v", tt.name, tt.voice, got, tt.want)
		}
	}
}

func TestResolveTTSSpeakerCandidates(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		fallback string
		want     []string
	}{
		{
			name:     "request and fallback",
			request:  "profile-voice",
			fallback: "en_male_adam_jupiter_bigtts",
			want:     []string{"profile-voice", "en_male_adam_jupiter_bigtts", "en_female_amy_jupiter_bigtts"},
		},
		{
			name:     "alias resolved",
			request:  "en_default",
			fallback: "",
			want:     []string{"en_female_amy_jupiter_bigtts"},
		},
		{
			name:     "duplicates ignored",
			request:  "EN_voice",
			fallback: "en_voice",
			want:     []string{"EN_voice", "en_female_amy_jupiter_bigtts"},
		},
	}

	for _, tt := range tests {
		got := resolveTTSSpeakerCandidates(tt.request, tt.fallback)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: resolveTTSSpeakerCandidates(%q, %q) = %v, want %v", tt.name, tt.request, tt.fallback, got, tt.want)
		}
	}
}

func TestIsResourceMismatchError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "unrelated error", err: fmt.Errorf("some other error"), want: false},
		{
			name: "mismatch substring",
			err:  fmt.Errorf("TTS error: {\"error\":\"resource ID is mismatched with speaker related resource\"}"),
			want: true,
		},
	}

	for _, tc := range cases {
		if got := isResourceMismatchError(tc.err); got != tc.want {
			t.Errorf("%s: isResourceMismatchError(%v) = %v, want %v", tc.name, tc.err, got, tc.want)
		}
	}
}

func TestBuildTTSRequestUsesPlayback(t *testing.T) {
	cfg := &speechmodel.SpeechConfig{TTSLanguage: "en-US", Playback: speechmodel.DefaultPlayback()}
	client := NewVolcengineTTSClient(cfg, nil)

	req, uid := client.buildTTSRequest(&speechmodel.TTSRequest{SessionID: "session_1", Text: "hi"}, "en_female_amy_jupiter_bigtts", "mp3")

	if uid != "session_1" {
		t.Fatalf("uid = %q, want session_1", uid)
	}
	if req.ReqParams.AudioParams.SpeedRatio != 0.9 {
		t.Errorf("speed = %v, want 0.9", req.ReqParams.AudioParams.SpeedRatio)
	}
	if req.ReqParams.AudioParams.VolumeRatio != 0.8 {
		t.Errorf("volume = %v, want 0.8", req.ReqParams.AudioParams.VolumeRatio)
	}
	if req.ReqParams.AudioParams.SampleRate != 24000 {
		t.Errorf("sample rate = %d, want 24000", req.ReqParams.AudioParams.SampleRate)
	}
	if req.ReqParams.Language != "en-US" {
		t.Errorf("language = %q", req.ReqParams.Language)
	}
}

func TestSynthesizeAgainstFakeUpstream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotHeaders http.Header
	var gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := UnmarshalFrame(data)
		if err != nil {
			return
		}
		var req volcengineTTSRequest
		_ = json.Unmarshal(frame.Payload, &req)
		gotText = req.ReqParams.Text

		_ = conn.WriteMessage(websocket.BinaryMessage, (&Frame{
			Type:     AudioOnlyServerResponse,
			Flags:    PositiveSequenceNumber,
			Sequence: 1,
			Payload:  []byte("abc"),
		}).Marshal())

		final, _ := json.Marshal(map[string]any{
			"reqid":    "req-1",
			"code":     3000,
			"sequence": -1,
			"data":     base64.StdEncoding.EncodeToString([]byte("def")),
			"addition": map[string]string{"duration": "1200"},
		})
		_ = conn.WriteMessage(websocket.BinaryMessage, (&Frame{
			Type:          FullServerResponse,
			Flags:         NegativeSequenceNumber,
			Sequence:      -2,
			Serialization: JSONSerialization,
			Payload:       final,
		}).Marshal())
	}))
	defer server.Close()

	cfg := &speechmodel.SpeechConfig{
		AppID:       "app",
		AccessToken: "token",
		BaseURL:     "ws" + strings.TrimPrefix(server.URL, "http"),
		TTSVoice:    "en_default",
		Playback:    speechmodel.DefaultPlayback(),
	}
	client := NewVolcengineTTSClient(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.SynthesizeSpeechWS(ctx, &speechmodel.TTSRequest{SessionID: "session_1", Text: "Hello there"})
	if err != nil {
		t.Fatalf("SynthesizeSpeechWS err: %v", err)
	}

	if string(resp.AudioData) != "abcdef" {
		t.Errorf("audio = %q, want abcdef", resp.AudioData)
	}
	if resp.RequestID != "req-1" || resp.Duration != 1200 || resp.Format != "mp3" {
		t.Errorf("unexpected response %+v", resp)
	}
	if gotText != "Hello there" {
		t.Errorf("upstream text = %q", gotText)
	}
	if gotHeaders.Get("X-Api-App-Key") != "app" || gotHeaders.Get("X-Api-Access-Key") != "token" {
		t.Errorf("missing auth headers: %v", gotHeaders)
	}
	if gotHeaders.Get("X-Api-Resource-Id") != "seed-tts-2.0" {
		t.Errorf("resource = %q", gotHeaders.Get("X-Api-Resource-Id"))
	}
}

func TestSynthesizeRequiresCredentials(t *testing.T) {
	client := NewVolcengineTTSClient(&speechmodel.SpeechConfig{}, nil)
	if client.Configured() {
		t.Fatal("expected unconfigured client")
	}
	if _, err := client.SynthesizeSpeechWS(context.Background(), &speechmodel.TTSRequest{Text: "hi"}); err != ErrTTSNotConfigured {
		t.Fatalf("err = %v, want ErrTTSNotConfigured", err)
	}
}
