package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-nodemanager/pkg/server"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
)

// NewServeCmd creates the `nm serve` command.
func NewServeCmd(svc **service.Service) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node manager config API for editor panels",
		Long: `Serve the /node-manager HTTP API, the /node-manager/events websocket and
prometheus metrics on /metrics. Stops on interrupt after flushing pending
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if addr == "" {
				addr = viper.GetString("server.addr")
			}
			if viper.GetString("log_level") != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.New(s, s.Logger)
			defer srv.Close()
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
