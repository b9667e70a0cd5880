package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/data"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/store"
	"github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = "8080"
)

var (
	portFlag = &cli.StringFlag{
		Name:  "port",
		Usage: "Port on which the server will listen",
		Value: serverPortDefault,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Serve stored reports as a local JSON API",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
		},
	}
)

func cmdStartServer(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	reports, err := cfg.Reports(ctx)
	if err != nil {
		return err
	}
	db, err := cfg.Data(ctx)
	if err != nil {
		return err
	}

	address := net.JoinHostPort("127.0.0.1", cmd.String(portFlag.Name))
	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(reports, db, cfg.BrandsDir),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started", "address", "http://"+address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(reports store.ReportStore, db *data.Store, brandsDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reports", reportsAPIHandler(reports))
	mux.HandleFunc("GET /api/reports/{handle}", reportAPIHandler(reports, db))
	mux.HandleFunc("GET /api/brands", brandsAPIHandler(brandsDir))
	mux.HandleFunc("GET /api/state", stateAPIHandler(db))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func reportsAPIHandler(reports store.ReportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := reports.List(r.Context())
		if err != nil {
			slog.Error("listing reports", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list reports")
			return
		}
		if list == nil {
			list = make([]*model.CreatorReport, 0)
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func reportAPIHandler(reports store.ReportStore, db *data.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := r.PathValue("handle")
		if !store.ValidHandle(handle) {
			writeError(w, http.StatusBadRequest, "invalid creator handle")
			return
		}
		rep, err := reports.Get(r.Context(), handle)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "report not found")
				return
			}
			slog.Error("loading report", "handle", handle, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load report")
			return
		}

		history, err := db.ScoreHistory(r.Context(), handle)
		if err != nil {
			slog.Error("loading score history", "handle", handle, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load score history")
			return
		}
		writeJSON(w, http.StatusOK, creatorDetail{Report: rep, History: history})
	}
}

func brandsAPIHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		list, errs := brand.LoadProfiles(dir)
		for _, err := range errs {
			slog.Warn("brand profile not loaded", "error", err)
		}
		if list == nil {
			list = make([]model.BrandProfile, 0)
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func stateAPIHandler(db *data.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := db.GetDataState(r.Context())
		if err != nil {
			slog.Error("reading data state", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read data state")
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}
