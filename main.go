package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-nodemanager/cmd"
	"github.com/mattsolo1/grove-nodemanager/cmd/config"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

func main() {
	var svc *service.Service
	rootCmd := newRootCmd(&svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := execute(ctx, rootCmd, &svc); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(svc **service.Service) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "nm",
		Short:        "Organize editor node types into folders, favorites and notes",
		SilenceUsage: true,
	}
	cobra.OnInitialize(config.InitConfig)
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if c.Annotations["no-service"] == "true" {
			return nil
		}
		s, err := config.InitService(c)
		if err != nil {
			return err
		}
		*svc = s
		return nil
	}

	rootCmd.AddCommand(cmd.NewFolderCmd(svc))
	rootCmd.AddCommand(cmd.NewNodeCmd(svc))
	rootCmd.AddCommand(cmd.NewPluginCmd(svc))
	rootCmd.AddCommand(cmd.NewCanvasCmd(svc))
	rootCmd.AddCommand(cmd.NewServeCmd(svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())
	return rootCmd
}

// execute runs the command and then closes the service, also when the
// command failed, so sqlite and badger are always released.
func execute(ctx context.Context, rootCmd *cobra.Command, svc **service.Service) error {
	err := rootCmd.ExecuteContext(ctx)
	if *svc == nil {
		return err
	}
	if cerr := (*svc).Close(context.Background()); cerr != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", cerr)
		if err == nil {
			err = cerr
		}
	}
	*svc = nil
	return err
}
