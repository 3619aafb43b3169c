package server

import (
	"io"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/application"
	"github.com/pep299/daily-news-digest/internal/infrastructure"
	"github.com/pep299/daily-news-digest/internal/transport/handler"
	"github.com/pep299/daily-news-digest/internal/transport/middleware"
)

// NewRouter sets up the trigger routes for an application
func NewRouter(app *application.Application) *mux.Router {
	run := middleware.Auth(app.Config.TriggerAuthToken)(handler.NewRun(app.Digest, app.Logger))

	r := mux.NewRouter()
	r.Use(middleware.Logging(app.Logger))

	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	r.Handle("/run", run).Methods(http.MethodPost)
	r.Handle("/", run).Methods(http.MethodPost) // Cloud Functions invoke the root path

	return r
}

// CreateHandler loads configuration and builds the HTTP handler. Logs and
// the printed digest go to w.
func CreateHandler(envFile string, w io.Writer) (http.Handler, *application.Application, error) {
	cfg, err := infrastructure.Load(envFile)
	if err != nil {
		l := zerolog.New(w)
		l.Error().Err(err).Msg("Error loading configuration")
		return nil, nil, err
	}

	logger := infrastructure.NewLogger(cfg.LogLevel, w)
	app := application.New(cfg, logger, w)

	return NewRouter(app), app, nil
}

// HandleRequest handles a single HTTP request (for Cloud Functions)
func HandleRequest(w http.ResponseWriter, r *http.Request) {
	h, _, err := CreateHandler("", funcframework.LogWriter(r.Context()))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.ServeHTTP(w, r)
}
