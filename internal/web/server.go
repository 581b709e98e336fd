package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobtrack/internal/store"
)

const userHeader = "X-User-Id"

type ServerConfig struct {
	Addr  string
	Store store.Store

	// DefaultUser is used when a request carries no X-User-Id header. Leave empty to
	// require the header.
	DefaultUser string

	Logger *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	hubs   *userHubs
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.DefaultUser = strings.TrimSpace(cfg.DefaultUser)
	cfg.Store.Dir = strings.TrimSpace(cfg.Store.Dir)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{cfg: cfg, logger: logger, hubs: newUserHubs()}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /job-applications", s.withUser(s.handleList))
	mux.HandleFunc("POST /job-applications", s.withUser(s.handleCreate))
	mux.HandleFunc("POST /job-applications/delete-rejected", s.withUser(s.handleDeleteRejected))
	mux.HandleFunc("POST /job-applications/rebalance", s.withUser(s.handleRebalance))
	mux.HandleFunc("GET /job-applications/{id}", s.withUser(s.handleGet))
	mux.HandleFunc("PATCH /job-applications/{id}", s.withUser(s.handleUpdate))
	mux.HandleFunc("DELETE /job-applications/{id}", s.withUser(s.handleDelete))
	mux.HandleFunc("GET /board", s.withUser(s.handleBoard))
	mux.HandleFunc("GET /board/stream", s.withUser(s.handleBoardStream))
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type userHandler func(w http.ResponseWriter, r *http.Request, user string)

func (s *Server) withUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(userHeader))
		if user == "" {
			user = s.cfg.DefaultUser
		}
		if user == "" {
			writeMessage(w, http.StatusUnauthorized, "missing "+userHeader+" header")
			return
		}
		h(w, r, user)
	}
}

// userHubs fans out change notifications to the board streams of one user.
type userHubs struct {
	mu   sync.Mutex
	hubs map[string]*resourceHub
}

func newUserHubs() *userHubs {
	return &userHubs{hubs: map[string]*resourceHub{}}
}

func (u *userHubs) hubFor(user string) *resourceHub {
	u.mu.Lock()
	defer u.mu.Unlock()
	h, ok := u.hubs[user]
	if !ok {
		h = newResourceHub()
		u.hubs[user] = h
	}
	return h
}

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}
