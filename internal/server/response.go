package server

import (
	"bufio"
	"io"
	"net/http"
	"time"
)

// syntheticPage is the fixed body served for unrecognized extensions and for
// any method other than GET.
const syntheticPage = "<html><head></head><body>\n" +
	"<h3>My web server works!</h3>\n" +
	"</body></html>\n"

// Outcome fully determines what gets written for one request. Exactly one of
// Body and Stream carries the payload: Stream when a binary resource is
// served from disk, Body otherwise.
type Outcome struct {
	NotFound bool
	MimeType string
	Body     string
	Stream   io.ReadCloser
}

// Assembler writes the status line, header block, and body for one request.
type Assembler struct {
	ServerName string
	Now        func() time.Time // nil means time.Now
}

// Write emits the full response and flushes the writer. Header lines end in
// a bare newline and the block is terminated by a blank line, matching the
// wire format clients of this server expect. A 404 outcome gets its own
// status line first; the 200 line is written unconditionally either way.
func (a *Assembler) Write(w *bufio.Writer, out Outcome) error {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	if out.NotFound {
		w.WriteString("HTTP/1.0 404 Not Found\n")
	}
	w.WriteString("HTTP/1.1 200 OK\n")
	w.WriteString("Date: " + now().UTC().Format(http.TimeFormat) + "\n")
	w.WriteString("Server: " + a.ServerName + "\n")
	w.WriteString("Connection: close\n")
	ct := out.MimeType
	if ct == "" {
		ct = "text/html"
	}
	w.WriteString("Content-Type: " + ct + "\n\n")

	if out.Stream != nil {
		if _, err := io.Copy(w, out.Stream); err != nil {
			return err
		}
	} else {
		w.WriteString(out.Body)
	}
	return w.Flush()
}
