package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"texcheck/internal/harness"
	"texcheck/internal/logging"
	"texcheck/internal/report"
)

var previewFlags struct {
	addr string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run the pipeline and serve the report as a local HTML page",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewFlags.addr, "addr", "127.0.0.1:0", "Listen address (port 0 = pick a free port)")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	rc := harness.NewRunContext(ws)
	res, err := rc.Run(cmd.Context())
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", previewFlags.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", previewFlags.addr, err)
	}
	fmt.Printf("serving report at http://%s (ctrl-c to stop)\n", ln.Addr())
	return servePreview(cmd.Context(), ln, report.RenderHTML(res))
}

// servePreview serves the rendered page until ctx is canceled.
func servePreview(ctx context.Context, ln net.Listener, page string) error {
	srv := &http.Server{Handler: previewHandler(page)}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		logging.New("preview").Info("preview server stopped")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func previewHandler(page string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	return mux
}
