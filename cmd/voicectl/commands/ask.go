package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/crystal-voice/backend/internal/app"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/interaction"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/recorder"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/router"
)

// printSpeaker writes replies to the terminal instead of playing audio.
type printSpeaker struct {
	out io.Writer
}

func (p printSpeaker) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintf(p.out, "assistant: %s\n", text)
	return err
}

func (printSpeaker) Stop() {}

func newAskCmd(factory Factory) *cobra.Command {
	var (
		welcome    bool
		showSource bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant one question, or read questions from stdin",
		Long: `Ask runs one conversation session. With arguments the words form a
single question; without arguments every non-empty stdin line is a turn of
the same session. Every turn is recorded in the conversation log.

Examples:
  voicectl ask "Where are Crystal Group offices?"
  voicectl ask --welcome --source < questions.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				return runAsk(cmd, a, args, welcome, showSource)
			})
		},
	}

	cmd.Flags().BoolVar(&welcome, "welcome", false, "Speak and record the greeting first")
	cmd.Flags().BoolVar(&showSource, "source", false, "Print where each reply came from")
	return cmd
}

func runAsk(cmd *cobra.Command, a *app.App, args []string, welcome, showSource bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	conv, err := a.Sessions.CreateSession(ctx)
	if err != nil {
		return err
	}
	sessionID := conv.Info().ID
	defer a.Sessions.EndSession(ctx, sessionID)

	ctrl := interaction.New(interaction.Deps{
		Router:         a.Router,
		Conversation:   conv,
		Recorder:       recorder.New(sessionID, a.Profile, a.Logbook, a.Logger),
		Speaker:        printSpeaker{out: out},
		LLM:            a.LLM,
		WelcomeMessage: a.Profile.WelcomeMessage,
		Observer:       a.Metrics,
		Logger:         a.Logger,
	})

	if welcome {
		ctrl.Welcome(ctx)
	}

	ask := func(question string) error {
		turn, err := ctrl.Finalize(ctx, question)
		if errors.Is(err, router.ErrInvalidInput) {
			return nil
		}
		if err != nil {
			return err
		}
		if showSource {
			fmt.Fprintf(out, "  (%s, %dms)\n", turn.Provenance, turn.Record.Metadata.ProcessingTimeMs)
		}
		return nil
	}

	if len(args) > 0 {
		return ask(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if err := ask(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
