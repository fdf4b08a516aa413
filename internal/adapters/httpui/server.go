// Package httpui serves the playback UI: the current frame as JSON and as a
// QR code image, and the finish action.
package httpui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/playback"
)

const (
	defaultImageSize = 512
	maxImageSize     = 2048
)

// Finisher is the part of playback.Controller the UI drives.
type Finisher interface {
	Finish() error
	ButtonLabel() string
}

// frameResponse is the JSON body of GET /frame.
type frameResponse struct {
	playback.Frame
	ButtonLabel string `json:"buttonLabel"`
}

// Server implements playback.FrameSink and exposes the latest frame over HTTP.
type Server struct {
	logger log.Logger
	router *mux.Router

	mu       sync.RWMutex
	frame    playback.Frame
	hasFrame bool
	finisher Finisher
}

// New creates a server. Attach a Finisher before serving POST /finish.
func New(logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	s := &Server{logger: logger}
	s.router = s.newRouter()
	return s
}

// Attach sets the controller that receives finish actions.
func (s *Server) Attach(f Finisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finisher = f
}

// ShowFrame records the frame to display.
func (s *Server) ShowFrame(frame playback.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
	s.hasFrame = true
}

// Clear drops the displayed frame, e.g. after the session finished.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = playback.Frame{}
	s.hasFrame = false
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("playback ui listening", log.String("addr", addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/frame", s.handleFrame).Methods(http.MethodGet)
	r.HandleFunc("/frame.png", s.handleFramePNG).Methods(http.MethodGet)
	r.HandleFunc("/finish", s.handleFinish).Methods(http.MethodPost)
	return r
}

func (s *Server) current() (playback.Frame, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label := playback.LabelFinish
	if s.finisher != nil {
		label = s.finisher.ButtonLabel()
	}
	return s.frame, label, s.hasFrame
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, label, ok := s.current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(frameResponse{Frame: frame, ButtonLabel: label})
}

func (s *Server) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	frame, _, ok := s.current()
	if !ok {
		http.Error(w, "no frame playing", http.StatusNotFound)
		return
	}

	size := defaultImageSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxImageSize {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}

	png, err := qrcode.Encode(frame.Text, qrcode.Low, size)
	if err != nil {
		s.logger.Error("render frame", log.Uint32("seq", frame.SeqNum), log.Err(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	f := s.finisher
	s.mu.RUnlock()
	if f == nil {
		http.Error(w, "no controller attached", http.StatusServiceUnavailable)
		return
	}

	switch err := f.Finish(); {
	case err == nil:
		s.Clear()
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, playback.ErrNoSession):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, playback.ErrClosed):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>qrship</title></head>
<body style="font-family:sans-serif;text-align:center">
<h1 id="title"></h1>
<p id="description"></p>
<img id="qr" width="512" height="512" alt="">
<p id="progress"></p>
<button id="finish">Finish</button>
<script>
async function tick() {
  const res = await fetch('/frame');
  if (res.status !== 200) { document.getElementById('progress').textContent = 'idle'; return; }
  const f = await res.json();
  document.getElementById('title').textContent = f.title || '';
  document.getElementById('description').textContent = f.description || '';
  document.getElementById('progress').textContent = 'frame ' + f.seq + ' of ' + f.total + ' fragments';
  document.getElementById('finish').textContent = f.buttonLabel;
  document.getElementById('qr').src = '/frame.png?seq=' + f.seq;
}
document.getElementById('finish').onclick = () => fetch('/finish', {method: 'POST'});
setInterval(tick, 100);
</script>
</body>
</html>
`
