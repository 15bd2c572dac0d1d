package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/crystal-voice/backend/internal/app"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/logbook"
)

func newLogsCmd(factory Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and manage the conversation log",
	}
	cmd.AddCommand(
		newLogsListCmd(factory),
		newLogsStatsCmd(factory),
		newLogsExportCmd(factory),
		newLogsClearCmd(factory),
	)
	return cmd
}

func newLogsListCmd(factory Factory) *cobra.Command {
	var (
		session string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded turns",
		Long: `List recorded turns in the order they happened.

Examples:
  voicectl logs list
  voicectl logs list --session session_1714559400000_abc123def
  voicectl logs list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				var records []turnlog.Record
				if session != "" {
					records = a.Logbook.ListBySession(cmd.Context(), session)
				} else {
					records = a.Logbook.List(cmd.Context())
				}

				out := cmd.OutOrStdout()
				if asJSON {
					if records == nil {
						records = []turnlog.Record{}
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTIME\tSESSION\tMODEL\tINPUT")
				for _, rec := range records {
					model := ""
					if rec.Metadata != nil {
						model = rec.Metadata.Model
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						rec.ID, rec.Timestamp.Local().Format(time.DateTime), rec.SessionID, model, truncate(rec.UserInput, 40))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Only show turns of this session")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func newLogsStatsCmd(factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the conversation log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				stats := a.Logbook.Stats(cmd.Context())
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "Total conversations: %d\n", stats.TotalConversations)
				fmt.Fprintf(out, "Sessions:            %d\n", stats.SessionsCount)
				fmt.Fprintf(out, "Avg response length: %d\n", stats.AvgResponseLength)
				fmt.Fprintf(out, "Total tokens:        %d\n", stats.TotalTokens)
				if stats.FirstLog != nil && stats.LastLog != nil {
					fmt.Fprintf(out, "First log:           %s\n", stats.FirstLog.Local().Format(time.DateTime))
					fmt.Fprintf(out, "Last log:            %s\n", stats.LastLog.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func newLogsExportCmd(factory Factory) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the conversation log as text, JSON or CSV",
		Long: `Export writes every recorded turn. Without --output the file is
named conversation_logs_<date>.<ext> in the current directory; "-" writes to
stdout.

Examples:
  voicectl logs export --format csv
  voicectl logs export --format json --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := logbook.ParseFormat(format)
			if err != nil {
				return err
			}

			return withApp(cmd, factory, func(a *app.App) error {
				if output == "-" {
					return a.Logbook.Export(cmd.Context(), cmd.OutOrStdout(), f)
				}

				path := output
				if path == "" {
					path = logbook.Filename(f, time.Now())
				}
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				if err := a.Logbook.Export(cmd.Context(), file, f); err != nil {
					file.Close()
					return fmt.Errorf("exporting: %w", err)
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d turns to %s\n", len(a.Logbook.List(cmd.Context())), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format: text, json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file, - for stdout")
	return cmd
}

func newLogsClearCmd(factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				if err := a.Logbook.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Conversation log cleared")
				return nil
			})
		},
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
