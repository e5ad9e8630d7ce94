package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-nodemanager/pkg/service"
	"github.com/mattsolo1/grove-nodemanager/pkg/tree"
)

// NewFolderCmd creates the `nm folder` command group.
func NewFolderCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders", "f"},
		Short:   "Create, rename, move and delete folders",
	}
	cmd.AddCommand(
		newFolderCreateCmd(svc),
		newFolderRenameCmd(svc),
		newFolderDeleteCmd(svc),
		newFolderMoveCmd(svc),
		newFolderToggleCmd(svc),
		newFolderListCmd(svc),
	)
	return cmd
}

func newFolderCreateCmd(svc **service.Service) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Long: `Create a folder at the root, or under --parent. A name already used by a
sibling gets a numeric suffix.

Examples:
  nm folder create Samplers
  nm folder create Advanced --parent Samplers`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			parentID := ""
			if parent != "" {
				f, err := s.Store.FindFolder(parent)
				if err != nil {
					return err
				}
				parentID = f.ID
			}
			id, err := s.Store.CreateFolder(args[0], parentID)
			if err != nil {
				return err
			}
			f, _ := s.Store.Folder(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", f.Name, f.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent folder id or name")
	return cmd
}

func newFolderRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <new-name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			f, err := s.Store.FindFolder(args[0])
			if err != nil {
				return err
			}
			if err := s.Store.RenameFolder(f.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", f.Name, strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newFolderDeleteCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <folder>...",
		Aliases: []string{"rm"},
		Short:   "Delete folders with their subfolders and memberships",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				f, err := s.Store.FindFolder(ref)
				if err != nil {
					return err
				}
				ids = append(ids, f.ID)
			}
			removed, err := s.Store.DeleteFolders(ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d folder(s)\n", len(removed))
			return nil
		},
	}
}

func newFolderMoveCmd(svc **service.Service) *cobra.Command {
	var (
		parent string
		order  int
	)
	cmd := &cobra.Command{
		Use:   "move <folder>",
		Short: "Move a folder under another folder or to the root",
		Long: `Move a folder. Without --parent it moves to the root. --order is the
zero-based position among the new siblings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			f, err := s.Store.FindFolder(args[0])
			if err != nil {
				return err
			}
			parentID := ""
			if parent != "" {
				p, err := s.Store.FindFolder(parent)
				if err != nil {
					return err
				}
				parentID = p.ID
			}
			if err := s.Store.MoveFolder(f.ID, parentID, order); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", f.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "new parent folder id or name")
	cmd.Flags().IntVar(&order, "order", 0, "position among siblings")
	return cmd
}

func newFolderToggleCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <folder>",
		Short: "Expand or collapse a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			f, err := s.Store.FindFolder(args[0])
			if err != nil {
				return err
			}
			expanded, err := s.Store.ToggleFolderExpanded(f.ID)
			if err != nil {
				return err
			}
			state := "collapsed"
			if expanded {
				state = "expanded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", f.Name, state)
			return nil
		},
	}
}

// folderView is the serialized form of the folder tree.
type folderView struct {
	ID       string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string       `json:"name" yaml:"name"`
	Expanded bool         `json:"expanded" yaml:"expanded"`
	Nodes    []string     `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Folders  []folderView `json:"folders,omitempty" yaml:"folders,omitempty"`
}

func toFolderView(it *tree.Item) folderView {
	v := folderView{Name: it.Name, Expanded: it.Expanded}
	if it.Type == tree.TypeFolder {
		v.ID = it.ID
	}
	for _, child := range it.Children {
		if child.IsContainer() {
			v.Folders = append(v.Folders, toFolderView(child))
		} else {
			v.Nodes = append(v.Nodes, child.ID)
		}
	}
	return v
}

func newFolderListCmd(svc **service.Service) *cobra.Command {
	var (
		asYAML bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the favorites and folder tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			roots := tree.Build(s.Snapshot(), func(id string) string {
				return s.Store.DisplayName(id, id)
			})
			out := cmd.OutOrStdout()

			switch {
			case asJSON || asYAML:
				views := make([]folderView, 0, len(roots))
				for _, r := range roots {
					views = append(views, toFolderView(r))
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(views)
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(views); err != nil {
					return fmt.Errorf("failed to encode folders: %w", err)
				}
				return enc.Close()
			default:
				printTree(out, roots)
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output the tree as YAML")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the tree as JSON")
	return cmd
}

func printTree(w io.Writer, roots []*tree.Item) {
	if w == nil {
		w = os.Stdout
	}
	for _, it := range tree.Flatten(roots, true) {
		indent := strings.Repeat("  ", it.Depth())
		switch it.Type {
		case tree.TypeNode:
			var marks string
			if it.Favorite && it.Parent != nil && it.Parent.Type != tree.TypeFavorites {
				marks += " ★"
			}
			if it.HasNote {
				marks += " ✎"
			}
			label := it.Name
			if label != it.ID {
				label = fmt.Sprintf("%s [%s]", it.Name, it.ID)
			}
			fmt.Fprintf(w, "%s- %s%s\n", indent, label, marks)
		default:
			fold := "▼"
			if !it.Expanded {
				fold = "▶"
			}
			fmt.Fprintf(w, "%s%s %s (%d)\n", indent, fold, it.Name, len(it.Children))
		}
	}
}
