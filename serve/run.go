package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docfrag/compose"
	"docfrag/fetch"
	"docfrag/state"
)

const shutdownTimeout = 5 * time.Second

// Run is serve subcommand action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("serve")

	root := cmd.Args().Get(0)
	if len(root) == 0 {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return err
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return fmt.Errorf("root is not a directory: %s", root)
	}

	listen := env.Cfg.Serve.Listen
	if cmd.IsSet("listen") {
		listen = cmd.String("listen")
	}
	if env.Cfg.Serve.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	// pages could only include fragments from the published tree
	fetcher, err := fetch.New(&env.Cfg.Fetch, root, nil, log.Named("fetch"))
	if err != nil {
		return err
	}
	srv := NewServer(root, compose.NewComposer(env.Cfg, fetcher, log.Named("compose")), log)

	hs := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()
	log.Info("Serving", zap.String("root", root), zap.String("listen", listen))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("unable to serve: %w", err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("unable to shutdown server: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
