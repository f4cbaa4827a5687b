package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rzbill/vesta/internal/runtime"
	"github.com/rzbill/vesta/internal/server/http/controllers"
	accountsvc "github.com/rzbill/vesta/internal/services/accounts"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	logger logpkg.Logger

	mu  sync.Mutex
	lis net.Listener

	streams  *streamsvc.Service
	accounts *accountsvc.Service
}

// New builds the HTTP gateway over rt. A nil logger logs to the console.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	s := &Server{
		rt:       rt,
		logger:   logger.WithComponent("http"),
		streams:  streamsvc.NewWithLogger(rt, logger),
		accounts: accountsvc.NewWithLogger(rt, logger),
	}
	r := chi.NewRouter()
	r.Use(requestID, s.recoverer, s.accessLog, cors)
	controllers.NewControllerRegistry(rt, s.streams, s.accounts).RegisterAllRoutes(r)
	s.srv = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Streams returns the stream service behind the gateway.
func (s *Server) Streams() *streamsvc.Service { return s.streams }

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Addr reports the bound address once ListenAndServe is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logpkg.ContextWithRequestID(r.Context(), id)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithContext(r.Context()).Error("handler panic",
					logpkg.F("panic", rec), logpkg.Str("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal","message":"internal server error"}` + "\n"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithContext(r.Context()).Debug("request",
			logpkg.Str("method", r.Method),
			logpkg.Str("path", r.URL.Path),
			logpkg.Int("status", rec.status),
			logpkg.Dur("elapsed", time.Since(start)),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+controllers.SignerHeader+", "+RequestIDHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
