package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/crystal-voice/backend/internal/app"
)

func newSettingsCmd(factory Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect log sink settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active sink settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(a *app.App) error {
				data, err := yaml.Marshal(a.Logbook.Settings())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.Settings.Path(), data)
				return nil
			})
		},
	})
	return cmd
}
