// Package web provides a local HTTP server exposing the rate table as
// a JSON API.
//
// SECURITY WARNING: This server has no authentication and should only
// be bound to localhost (127.0.0.1). Do not expose it to untrusted
// networks.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/ratebook"
	"github.com/robinvdvleuten/ratebook/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	WatchEnabled bool

	book       *ratebook.Book
	sourceFile string
	closer     func() error

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, sourceFile string) *Server {
	return NewWithVersion(port, sourceFile, "", "")
}

func NewWithVersion(port int, sourceFile, version, commitSHA string) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		sourceFile: sourceFile,
		sseClients: make(map[chan string]struct{}),
	}
}

func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))
	defer timer.End()

	if s.sourceFile == "" {
		return fmt.Errorf("rate table source is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load_table %s", filepath.Base(s.sourceFile)))
	if err := s.load(ctx); err != nil {
		loadTimer.End()
		return err
	}
	loadTimer.End()

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return http.ListenAndServe(addr, s.router())
}

// load opens the backing store and performs the initial full read.
func (s *Server) load(ctx context.Context) error {
	src, closer, err := ratebook.DetectSource(s.sourceFile)
	if err != nil {
		return err
	}

	book, err := ratebook.Open(ctx, src)
	if err != nil {
		_ = closer()
		return fmt.Errorf("failed to load rate table: %w", err)
	}

	s.book = book
	s.closer = closer
	return nil
}

func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/rates", s.handleListRates)
	mux.HandleFunc("GET /api/rates/at", s.handleRatesAt)
	mux.HandleFunc("GET /api/rates/during", s.handleRatesDuring)
	mux.HandleFunc("GET /api/rates/default", s.handleDefaultRate)
	mux.HandleFunc("GET /api/rates/{id}", s.handleGetRate)
	mux.HandleFunc("GET /api/rates/{id}/at", s.handleResolveRate)
	mux.HandleFunc("GET /api/rates/{id}/changes", s.handleRateChanges)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return mux
}

// startWatcher watches the source file and reloads the table on change.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file itself so atomic saves
	// (write temp file, rename over) keep being observed.
	dir := filepath.Dir(s.sourceFile)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go s.runWatcher(ctx, watcher)

	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Debounce timer - editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond

	target, err := filepath.Abs(s.sourceFile)
	if err != nil {
		target = s.sourceFile
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if abs, err := filepath.Abs(event.Name); err != nil || abs != target {
				continue
			}

			// React to write/create/remove/rename events
			// (Remove/Rename are common in atomic saves)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleFileChange reloads the table. On failure the previous snapshot
// keeps serving, so a half-written file never takes the server down.
func (s *Server) handleFileChange(ctx context.Context) {
	if err := s.book.Reload(ctx); err != nil {
		log.Printf("Failed to reload rate table: %v", err)
		return
	}

	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
		close(clientChan)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
