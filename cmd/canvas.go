package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
	"github.com/mattsolo1/grove-nodemanager/pkg/hittest"
	"github.com/mattsolo1/grove-nodemanager/pkg/host"
	"github.com/mattsolo1/grove-nodemanager/pkg/host/scene"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

// NewCanvasCmd creates the `nm canvas` command group, which replays a saved
// workflow through the overlay without the editor.
func NewCanvasCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Paint or click the overlay on a saved workflow",
	}
	cmd.AddCommand(newCanvasPaintCmd(svc), newCanvasClickCmd(svc), newCanvasGroupFavoriteCmd(svc))
	return cmd
}

// printNotifier writes notifications to the command output.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Notify(level host.Level, message string) {
	fmt.Fprintf(n.w, "[%s] %s\n", level, message)
}

// flagPrompter answers dialogs from command flags. Unset answers dismiss.
type flagPrompter struct {
	folder    string
	newFolder string
	note      *string
	svc       *service.Service
}

func (p flagPrompter) EditNote(nodeTypeID, current string, done func(text string)) {
	if p.note != nil {
		done(*p.note)
	}
}

func (p flagPrompter) PickFolder(req host.FolderPick, done func(host.FolderChoice)) {
	switch {
	case p.newFolder != "":
		done(host.FolderChoice{NewFolder: true, Name: p.newFolder})
	case p.folder != "":
		f, err := p.svc.Store.FindFolder(p.folder)
		if err != nil {
			// An unknown id reaches the store and is reported there.
			done(host.FolderChoice{FolderID: p.folder})
			return
		}
		done(host.FolderChoice{FolderID: f.ID})
	}
}

func loadScene(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workflow: %w", err)
	}
	defer f.Close()
	return scene.LoadWorkflow(f)
}

func attachScene(s *service.Service, sc *scene.Scene, prompter host.Prompter, out io.Writer) (*service.Canvas, error) {
	c, err := s.Attach(service.Host{
		Graph:    sc,
		Hooks:    sc,
		Frames:   sc,
		Prompter: prompter,
		Notifier: printNotifier{w: out},
	})
	if err != nil {
		return nil, err
	}
	sc.Paint(&scene.Recorder{})
	return c, nil
}

func newCanvasPaintCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "paint <workflow.json>",
		Short: "Print the overlay glyphs drawn for each node and group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			sc, err := loadScene(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c, err := attachScene(s, sc, flagPrompter{svc: s}, out)
			if err != nil {
				return err
			}
			defer c.Detach()

			rec := &scene.Recorder{}
			sc.Paint(rec)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GLYPH\tX\tY\tW\tH\tACTIVE")
			for _, call := range rec.Calls {
				fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%v\n",
					call.Glyph, call.Rect.X, call.Rect.Y, call.Rect.W, call.Rect.H, call.Active)
			}
			return w.Flush()
		},
	}
}

func newCanvasClickCmd(svc **service.Service) *cobra.Command {
	var (
		x, y      float64
		canvas    bool
		folder    string
		newFolder string
		note      string
	)
	cmd := &cobra.Command{
		Use:   "click <workflow.json> --x <x> --y <y>",
		Short: "Click a point and run whatever overlay action it hits",
		Long: `Click a screen point (or a canvas point with --canvas) on a saved workflow.
Dialogs are answered from --folder, --new-folder and --note; without an
answer they are dismissed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			sc, err := loadScene(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			prompter := flagPrompter{svc: s, folder: folder, newFolder: newFolder}
			if cmd.Flags().Changed("note") {
				prompter.note = &note
			}
			c, err := attachScene(s, sc, prompter, out)
			if err != nil {
				return err
			}
			defer c.Detach()

			p := geom.Point{X: x, Y: y}
			if canvas {
				p = sc.Viewport().CanvasToScreen(p)
			}
			if !c.HandlePointerDown(hittest.NewPointerEvent(p.X, p.Y)) {
				fmt.Fprintln(out, "Nothing to click there.")
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "y coordinate")
	cmd.Flags().BoolVar(&canvas, "canvas", false, "coordinates are canvas coordinates")
	cmd.Flags().StringVar(&folder, "folder", "", "answer the folder picker with this folder")
	cmd.Flags().StringVar(&newFolder, "new-folder", "", "answer the folder picker with a new folder")
	cmd.Flags().StringVar(&note, "note", "", "answer the note editor with this text")
	return cmd
}

func newCanvasGroupFavoriteCmd(svc **service.Service) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "group-favorite <workflow.json> --group <title>",
		Short: "Toggle favorites for every node inside a group",
		Long: `Favorite every node type fully inside the group, or unfavorite all of
them when every one is already a favorite.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			sc, err := loadScene(args[0])
			if err != nil {
				return err
			}
			c, err := attachScene(s, sc, flagPrompter{svc: s}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer c.Detach()

			g, ok := c.GroupByTitle(group)
			if !ok {
				return fmt.Errorf("no group titled %q in %s", group, args[0])
			}
			_, _, err = c.ToggleGroupFavorite(g)
			return err
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "title of the group")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
