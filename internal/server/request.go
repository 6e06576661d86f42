package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// Request is the part of the HTTP request line this server acts on. Only the
// first header line is kept; every following header is read and discarded.
type Request struct {
	Method string
	Target string
}

// idleWait bounds how long a single readiness wait on the connection lasts.
// A timed-out wait is retried, so a slow client can still take as long as it
// likes to finish its request; it just never pins a busy loop while doing so.
var idleWait = 500 * time.Millisecond

type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

// ReadRequest consumes the request header block from conn: the request line,
// then every header line up to the terminating blank line or EOF. Parsing is
// best effort; a malformed or truncated request yields whatever method and
// target could be extracted, never an error.
func ReadRequest(conn io.Reader) Request {
	var req Request

	dl, _ := conn.(deadlineReader)
	if dl != nil {
		defer dl.SetReadDeadline(time.Time{})
	}

	br := bufio.NewReader(conn)
	first := true
	for {
		line, err := readLine(br, dl)
		if first && line != "" {
			method, rest, ok := strings.Cut(line, " ")
			req.Method = method
			if ok {
				req.Target, _, _ = strings.Cut(rest, " ")
			}
			first = false
		}
		if err != nil || line == "" {
			return req
		}
	}
}

// readLine reads one header line, waiting in bounded slices for input to
// arrive. Partial data read before a timeout is kept and the read resumes.
func readLine(br *bufio.Reader, dl deadlineReader) (string, error) {
	var b strings.Builder
	for {
		if dl != nil {
			dl.SetReadDeadline(time.Now().Add(idleWait))
		}
		chunk, err := br.ReadString('\n')
		b.WriteString(chunk)
		if err == nil {
			return strings.TrimRight(b.String(), "\r\n"), nil
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			continue
		}
		return strings.TrimRight(b.String(), "\r\n"), err
	}
}
