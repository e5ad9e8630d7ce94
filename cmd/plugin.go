package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

// NewPluginCmd creates the `nm plugin` command group.
func NewPluginCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugin",
		Aliases: []string{"plugins"},
		Short:   "Hide or show node types by the plugin that provides them",
	}
	cmd.AddCommand(
		newPluginVisibilityCmd(svc, "hide", "Hide plugins from node listings", true),
		newPluginVisibilityCmd(svc, "show", "Unhide plugins", false),
		newPluginShowHiddenCmd(svc),
		newPluginListCmd(svc),
	)
	return cmd
}

func newPluginVisibilityCmd(svc **service.Service, verb, short string, hidden bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <plugin>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			n := s.Store.SetHidden(args, hidden)
			fmt.Fprintf(cmd.OutOrStdout(), "%d plugin(s) changed; hidden: %v\n", n, s.Store.Hidden())
			return nil
		},
	}
}

func newPluginShowHiddenCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:       "show-hidden <on|off>",
		Short:     "Include hidden plugins in listings without unhiding them",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			switch args[0] {
			case "on", "true":
				s.Store.SetShowHidden(true)
			case "off", "false":
				s.Store.SetShowHidden(false)
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Show hidden plugins: %v\n", s.Store.ShowHidden())
			return nil
		},
	}
}

func newPluginListCmd(svc **service.Service) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List plugins from the registry with their node counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			sources := s.Registry.Sources(s.Store)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sources)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PLUGIN\tTITLE\tNODES\tHIDDEN")
			for _, src := range sources {
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", src.ID, src.Title, src.NodeCount, src.Hidden)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
