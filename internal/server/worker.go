package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tinywebd/tinywebd/internal/config"
)

// fallbackPage is the generic 404 resource inside the fallback directory.
// It goes through the same template pass as any other text resource.
const fallbackPage = "404error.html"

// Worker handles exactly one request on one already-open connection. All
// per-request state lives in local values, so a single Worker is safe to
// share across any number of concurrent connections.
type Worker struct {
	logger      *slog.Logger
	resolver    *Resolver
	renderer    *Renderer
	assembler   *Assembler
	fallbackDir string
}

// NewWorker builds a worker from the loaded configuration.
func NewWorker(cfg *config.Config, logger *slog.Logger) *Worker {
	return &Worker{
		logger: logger,
		resolver: &Resolver{
			Root:              cfg.DocRoot,
			RestrictTraversal: cfg.RestrictTraversal,
		},
		renderer:    &Renderer{ServerName: cfg.ServerName},
		assembler:   &Assembler{ServerName: cfg.ServerName},
		fallbackDir: cfg.FallbackDir,
	}
}

// Handle runs one connection to completion: parse, decide, write, flush,
// close. The connection is closed on every path out of here.
func (w *Worker) Handle(conn net.Conn) {
	defer conn.Close()

	log := w.logger.With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())
	log.Debug("handling connection")

	req := ReadRequest(conn)
	log.Info("request", "method", req.Method, "target", req.Target)

	out, err := w.decide(req)
	if err != nil {
		log.Error("no response possible", "error", err)
		return
	}
	if out.Stream != nil {
		defer out.Stream.Close()
	}

	bw := bufio.NewWriter(conn)
	if err := w.assembler.Write(bw, out); err != nil {
		log.Error("write response", "error", err)
		return
	}
	log.Debug("done handling connection")
}

// decide maps a parsed request to its response outcome. Only GET ever serves
// file content; everything else lands on the synthetic default page with a
// successful status.
func (w *Worker) decide(req Request) (Outcome, error) {
	if req.Method != http.MethodGet {
		return Outcome{Body: syntheticPage}, nil
	}

	res := w.resolver.Resolve(req.Target)
	switch {
	case res.Mode == ModeSynthetic:
		return Outcome{Body: syntheticPage}, nil
	case !res.Exists:
		return w.fallback(res)
	case res.Mode == ModeText:
		body, err := w.renderer.RenderFile(res.Path)
		if err != nil {
			// The file vanished or became unreadable after the existence
			// check; treat it as missing.
			return w.fallback(res)
		}
		return Outcome{MimeType: res.MimeType, Body: body}, nil
	default:
		f, err := os.Open(res.Path)
		if err != nil {
			return w.fallback(res)
		}
		return Outcome{MimeType: res.MimeType, Stream: f}, nil
	}
}

// fallback produces the 404 outcome. Image-classified targets are answered
// with the same-named file from the fallback directory; everything else gets
// the rendered generic 404 page. A fallback resource that itself cannot be
// read is terminal for the request.
func (w *Worker) fallback(res Resource) (Outcome, error) {
	if res.Mode == ModeBinary {
		p := filepath.Join(w.fallbackDir, filepath.Base(res.Path))
		f, err := os.Open(p)
		if err != nil {
			return Outcome{}, fmt.Errorf("image fallback %s: %w", p, err)
		}
		return Outcome{NotFound: true, MimeType: probeMime(p), Stream: f}, nil
	}

	p := filepath.Join(w.fallbackDir, fallbackPage)
	body, err := w.renderer.RenderFile(p)
	if err != nil {
		return Outcome{}, fmt.Errorf("404 fallback %s: %w", p, err)
	}
	return Outcome{NotFound: true, MimeType: probeMime(p), Body: body}, nil
}
