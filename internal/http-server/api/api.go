package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"HomeDesk/bot/messenger"
	"HomeDesk/internal/config"
	"HomeDesk/internal/http-server/handlers/errors"
	"HomeDesk/internal/http-server/handlers/passes"
	"HomeDesk/internal/http-server/handlers/webhook"
	"HomeDesk/internal/http-server/middleware/authenticate"
	"HomeDesk/internal/http-server/middleware/timeout"
	"HomeDesk/internal/lib/sl"
	"HomeDesk/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// New builds the router and serves it. Webhook routes are left outside
// the authenticate middleware: the messenger platform cannot send a
// Bearer key, and those requests are verified by payload signature
// instead.
func New(conf *config.Config, log *slog.Logger, bot *messenger.Bot, passCore passes.Core, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(15))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	if bot != nil {
		router.Route("/webhook", func(r chi.Router) {
			r.Get("/", webhook.Verify(log, bot))
			r.Post("/", webhook.Handler(log, bot))
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authenticate.New(log, conf.Listen.ApiKey))

		v1.Route("/passes", func(r chi.Router) {
			r.Post("/checkin", passes.CheckIn(log, passCore, hub))
			r.Get("/{code}", passes.Lookup(log, passCore))
		})
	})

	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, conf.Listen.ApiKey, log, w, r)
		})
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
