package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-nodemanager/pkg/registry"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

// NewNodeCmd creates the `nm node` command group.
func NewNodeCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes", "n"},
		Short:   "Classify, favorite and annotate node types",
	}
	cmd.AddCommand(
		newNodeAddCmd(svc),
		newNodeRemoveCmd(svc),
		newNodeFavoriteCmd(svc),
		newNodeNoteCmd(svc),
		newNodeRenameCmd(svc),
		newNodeUnrenameCmd(svc),
		newNodeListCmd(svc),
	)
	return cmd
}

func newNodeAddCmd(svc **service.Service) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "add <node-type>... --folder <folder>",
		Short: "Add node types to a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			f, err := s.Store.FindFolder(folder)
			if err != nil {
				return err
			}
			res, err := s.Store.AddNodesToFolder(args, f.ID)
			if err != nil {
				return err
			}
			if res.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d node type(s) to %s (%d already there)\n", res.Added, f.Name, res.Skipped)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d node type(s) to %s\n", res.Added, f.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "target folder id or name")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

func newNodeRemoveCmd(svc **service.Service) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "remove <node-type>... --folder <folder>",
		Short: "Remove node types from a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			f, err := s.Store.FindFolder(folder)
			if err != nil {
				return err
			}
			n, err := s.Store.RemoveNodesFromFolder(args, f.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d node type(s) from %s\n", n, f.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder id or name")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

func newNodeFavoriteCmd(svc **service.Service) *cobra.Command {
	var (
		on  bool
		off bool
	)
	cmd := &cobra.Command{
		Use:     "favorite <node-type>...",
		Aliases: []string{"fav"},
		Short:   "Toggle favorites",
		Long: `Toggle the favorite state of node types. With several types the group rule
applies: all become favorites unless all already are. --on and --off force
the state.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if on && off {
				return fmt.Errorf("--on and --off are mutually exclusive")
			}
			favorite := on
			if !on && !off {
				favorite = false
				for _, id := range args {
					if !s.Store.IsFavorite(id) {
						favorite = true
						break
					}
				}
			}
			if favorite {
				n := s.Store.BatchFavorite(args)
				fmt.Fprintf(cmd.OutOrStdout(), "Favorited %d node type(s)\n", n)
			} else {
				n := s.Store.BatchUnfavorite(args)
				fmt.Fprintf(cmd.OutOrStdout(), "Unfavorited %d node type(s)\n", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "favorite regardless of current state")
	cmd.Flags().BoolVar(&off, "off", false, "unfavorite regardless of current state")
	return cmd
}

func newNodeNoteCmd(svc **service.Service) *cobra.Command {
	var clearNote bool
	cmd := &cobra.Command{
		Use:   "note <node-type> [text...]",
		Short: "Show, set or clear a node type's note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id := args[0]
			out := cmd.OutOrStdout()
			switch {
			case clearNote:
				if err := s.Store.SetNote(id, ""); err != nil {
					return err
				}
				fmt.Fprintf(out, "Note removed from %s\n", id)
			case len(args) > 1:
				if err := s.Store.SetNote(id, strings.Join(args[1:], " ")); err != nil {
					return err
				}
				fmt.Fprintf(out, "Note saved for %s\n", id)
			default:
				note, ok := s.Store.Note(id)
				if !ok {
					fmt.Fprintf(out, "%s has no note\n", id)
					return nil
				}
				fmt.Fprintln(out, note)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearNote, "clear", false, "remove the note")
	return cmd
}

func newNodeRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node-type> <label>",
		Short: "Set a custom display label",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			label := strings.Join(args[1:], " ")
			if err := s.Store.SetCustomName(args[0], label); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now shown as %s\n", args[0], strings.TrimSpace(label))
			return nil
		},
	}
}

func newNodeUnrenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "unrename <node-type>",
		Short: "Drop a custom display label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if !s.Store.ClearCustomName(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no custom label\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Custom label removed from %s\n", args[0])
			return nil
		},
	}
}

func newNodeListCmd(svc **service.Service) *cobra.Command {
	var (
		filter registry.Filter
		folder string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list [query]",
		Aliases: []string{"ls"},
		Short:   "List registered node types with their classification",
		Long: `List node types from the registry file.

Examples:
  nm node list                 # everything visible
  nm node list sampler         # label, id or category contains "sampler"
  nm node list --favorites
  nm node list --folder Samplers
  nm node list --source essentials`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if len(args) == 1 {
				filter.Query = args[0]
			}
			if folder != "" {
				f, err := s.Store.FindFolder(folder)
				if err != nil {
					return err
				}
				filter.FolderID = f.ID
			}
			entries := s.Registry.List(s.Store, filter)
			out := cmd.OutOrStdout()

			if asJSON {
				if entries == nil {
					entries = []registry.Entry{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				if s.Registry.Len() == 0 {
					fmt.Fprintln(out, "No node types registered. Point registry_file at an export of the editor's node list.")
				} else {
					fmt.Fprintln(out, "No matching node types.")
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tLABEL\tSOURCE\tFLAGS")
			for _, e := range entries {
				var flags []string
				if e.Favorite {
					flags = append(flags, "favorite")
				}
				if e.HasNote {
					flags = append(flags, "note")
				}
				if e.Hidden {
					flags = append(flags, "hidden")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Label, e.SourceID(), strings.Join(flags, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only types in this folder")
	cmd.Flags().StringVar(&filter.Source, "source", "", "only types from this plugin")
	cmd.Flags().BoolVar(&filter.FavoritesOnly, "favorites", false, "only favorites")
	cmd.Flags().BoolVar(&filter.IncludeHidden, "all", false, "include types from hidden plugins")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
