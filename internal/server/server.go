package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kush-Singh-26/html-to-image/internal/config"
)

// ErrPortInUse is wrapped by Listen when the address is already bound.
var ErrPortInUse = errors.New("port already in use")

// IndexMissingError reports that the serving root has no index file.
type IndexMissingError struct {
	Name string
	Dir  string
}

func (e *IndexMissingError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.Name, e.Dir)
}

// Server serves one fixed root directory with CORS headers on every response.
type Server struct {
	cfg    *config.Config
	root   string
	fs     afero.Fs
	log    *zap.Logger
	out    io.Writer
	opener Opener
}

// Option configures a Server.
type Option func(*Server)

// WithFs replaces the on-disk serving root. Paths are resolved from "/".
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.fs = fs }
}

// WithLogger sets the request and warning logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithOutput sets where the startup banner is printed.
func WithOutput(w io.Writer) Option {
	return func(s *Server) { s.out = w }
}

// WithOpener replaces the system browser launcher.
func WithOpener(o Opener) Option {
	return func(s *Server) { s.opener = o }
}

// New validates cfg and serves cfg.RootDir from disk unless WithFs is given.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	cfg.Validate()

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", cfg.RootDir, err)
	}

	// Force register the WASM mime type
	_ = mime.AddExtensionType(".wasm", "application/wasm")

	s := &Server{
		cfg:    cfg,
		root:   root,
		log:    zap.NewNop(),
		out:    os.Stdout,
		opener: systemBrowser{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afero.NewBasePathFs(afero.NewOsFs(), root)
	}
	return s, nil
}

// Root is the absolute serving root.
func (s *Server) Root() string {
	return s.root
}

// CheckIndex fails with *IndexMissingError when the index file is absent.
func (s *Server) CheckIndex() error {
	ok, err := afero.Exists(s.fs, "/"+s.cfg.IndexFile)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.cfg.IndexFile, err)
	}
	if !ok {
		return &IndexMissingError{Name: s.cfg.IndexFile, Dir: s.root}
	}
	return nil
}

// Listen binds the configured address. When the port is 0 the bound port
// is written back into the config so URL() reflects it.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, fmt.Errorf("listen %s: %w: %w", addr, ErrPortInUse, err)
		}
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		s.cfg.Port = tcp.Port
	}
	return ln, nil
}

// Handler returns the full middleware chain around the file server.
func (s *Server) Handler() http.Handler {
	var files http.Handler = http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	if s.cfg.Compress {
		files = compressHandler(files)
	}
	return logRequests(s.log, withCORS(preflight(files)))
}

// Serve blocks until ctx is cancelled or the listener fails. A stop caused
// by ctx returns nil, even when open connections have to be cut after
// ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) (errReturned error) {
	if s.cfg.Watch {
		w, err := startWatcher(s.root, s.cfg.DebounceDuration, s.log)
		if err != nil {
			s.log.Warn("file watcher disabled", zap.Error(err))
		} else {
			defer multierr.AppendInvoke(&errReturned, multierr.Close(w))
		}
	}

	httpServer := &http.Server{
		Handler: s.Handler(),
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		// Stalled clients are expected; drop them once the budget is spent.
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("forcing connections closed", zap.Error(err))
			_ = httpServer.Close()
		}
		return nil
	})

	return eg.Wait()
}

// Run checks the root, binds, prints the banner, opens the browser and
// serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.CheckIndex(); err != nil {
		return err
	}

	ln, err := s.Listen()
	if err != nil {
		return err
	}

	s.printBanner()
	if s.cfg.OpenBrowser {
		s.launchBrowser(s.cfg.URL())
	}

	return s.Serve(ctx, ln)
}

func (s *Server) printBanner() {
	_, _ = fmt.Fprintf(s.out, "\n🚀 HTML to Image Converter Server\n")
	_, _ = fmt.Fprintf(s.out, "📍 URL: %s\n", s.cfg.URL())
	_, _ = fmt.Fprintf(s.out, "📁 Serving: %s\n", s.root)
	if s.cfg.OpenBrowser {
		_, _ = fmt.Fprintf(s.out, "🌐 Opening browser...\n")
	}
	_, _ = fmt.Fprintf(s.out, "\nPress Ctrl+C to stop the server\n\n")
}
