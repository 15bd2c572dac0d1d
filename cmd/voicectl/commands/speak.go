package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/crystal-voice/backend/internal/app"
	speechmodel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
)

func newSpeakCmd(factory Factory) *cobra.Command {
	var (
		voice   string
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Synthesize text with Volcengine TTS and save the audio",
		Long: `Speak sends text to the configured Volcengine synthesiser using the
assistant's playback rate and volume, and writes the returned audio to a file.
Requires SPEECH_APP_ID and SPEECH_ACCESS_TOKEN.

Examples:
  voicectl speak "Hello! How can I help you today?"
  voicectl speak --voice en_male -o greeting.mp3 "Welcome to Crystal Group"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				if !a.Speech.SynthesisEnabled() {
					return errors.New("speech synthesis not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
				}

				if voice == "" {
					voice = a.Profile.VoiceID
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				resp, err := a.Speech.SynthesizeSpeech(ctx, &speechmodel.TTSRequest{
					SessionID: fmt.Sprintf("manual-%d", time.Now().UnixNano()),
					Text:      strings.Join(args, " "),
					Voice:     voice,
				})
				if err != nil {
					return fmt.Errorf("synthesizing: %w", err)
				}

				path := output
				if path == "" {
					path = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), resp.Format)
				}
				if err := os.WriteFile(path, resp.AudioData, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes (%dms) to %s\n", len(resp.AudioData), resp.Duration, path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "", "Voice id or alias (en_default, en_female, en_male)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Audio file path")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "Synthesis timeout")
	return cmd
}
