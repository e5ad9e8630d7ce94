//go:build integration

package main

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/server"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
	nmsync "github.com/mattsolo1/grove-nodemanager/pkg/sync"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestIntegration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=1 to run.")
	}
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	for _, backend := range []string{persistence.BackendFile, persistence.BackendSQLite, persistence.BackendBadger} {
		t.Run("Roundtrip/"+backend, func(t *testing.T) {
			cfg := &service.Config{
				DataDir:        t.TempDir(),
				Backend:        backend,
				MaxFolderDepth: 3,
				Sync:           nmsync.DefaultConfig(),
			}
			svc, err := service.New(ctx, cfg, service.WithLogger(quietLogger()))
			require.NoError(t, err)
			id, err := svc.Store.CreateFolder("Samplers", "")
			require.NoError(t, err)
			_, err = svc.Store.AddNodesToFolder([]string{"KSampler", "KSamplerAdvanced"}, id)
			require.NoError(t, err)
			require.NoError(t, svc.Store.SetNote("KSampler", "cfg 7"))
			require.NoError(t, svc.Close(ctx))

			svc, err = service.New(ctx, cfg, service.WithLogger(quietLogger()))
			require.NoError(t, err)
			defer svc.Close(ctx)
			assert.Equal(t, []string{"KSampler", "KSamplerAdvanced"}, svc.Store.FolderNodes(id))
			assert.True(t, svc.Store.HasNote("KSampler"))
		})
	}

	// A second process that stores its config through the first one's API.
	t.Run("RemoteBackend", func(t *testing.T) {
		primary, err := service.New(ctx, &service.Config{
			DataDir:        t.TempDir(),
			Backend:        persistence.BackendFile,
			MaxFolderDepth: 3,
			Sync:           nmsync.Config{AutoSave: false},
		}, service.WithLogger(quietLogger()))
		require.NoError(t, err)
		defer primary.Close(ctx)

		srv := server.New(primary, quietLogger())
		defer srv.Close()
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		remote, err := service.New(ctx, &service.Config{
			DataDir:        t.TempDir(),
			Backend:        persistence.BackendHTTP,
			Persistence:    map[string]interface{}{"url": ts.URL, "timeout": "2s"},
			MaxFolderDepth: 3,
			Sync:           nmsync.Config{AutoSave: false},
		}, service.WithLogger(quietLogger()))
		require.NoError(t, err)

		remote.Store.ToggleFavorite("VAEDecode")
		require.NoError(t, remote.Close(ctx))

		assert.True(t, primary.Store.IsFavorite("VAEDecode"))
		disk, err := primary.Bridge.GetConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"VAEDecode"}, disk.Favorites)
	})
}
