// Package server exposes the HTTP surface: the LINE webhook, the todo CRUD
// API backing the LIFF front-end, generated image delivery, health and
// metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/assetcache"
	"github.com/neezs/neezspilot/pkg/line"
	"github.com/neezs/neezspilot/pkg/todo"
)

// Dispatcher turns an inbound event into reply messages.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev line.Event) []line.Message
}

// Replier delivers reply messages for a webhook event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []line.Message) error
}

type Config struct {
	ListenAddr    string
	ChannelSecret string
	// StaticDir serves the LIFF front-end under /liff/ when non-empty.
	StaticDir string
}

var (
	webhookEventsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neezspilot_webhook_events_total",
		Help: "Webhook events by outcome: replied, silent, panicked, reply_failed.",
	}, []string{"outcome"})
)

func NewServer(
	config Config,
	dispatcher Dispatcher,
	replier Replier,
	store todo.Store,
	assets *assetcache.Cache,
) *Server {
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		replier:    replier,
		store:      store,
		assets:     assets,
	}
}

type Server struct {
	config     Config
	dispatcher Dispatcher
	replier    Replier
	store      todo.Store
	assets     *assetcache.Cache
	httpServer *http.Server
}

// Handler builds the route table. Kept separate from Serve so tests can
// exercise the full routing without a listener.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/api/todos", s.listTodos).Methods(http.MethodGet)
	router.HandleFunc("/api/todos", s.createTodo).Methods(http.MethodPost)
	router.HandleFunc("/api/todos/{id}/done", s.markTodoDone).Methods(http.MethodPost)
	router.HandleFunc("/api/todos/{id}", s.deleteTodo).Methods(http.MethodDelete)

	router.HandleFunc("/api/images/{id}", s.serveImage).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if s.config.StaticDir != "" {
		router.PathPrefix("/liff/").Handler(
			http.StripPrefix("/liff/", http.FileServer(http.Dir(s.config.StaticDir))))
	}

	return router
}

func (s *Server) Serve() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	log.Infof("listening on %s", s.config.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
