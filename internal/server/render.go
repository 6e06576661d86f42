package server

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"
)

// Placeholder tokens recognized inside text resources.
const (
	dateToken   = "<cs371date>"
	serverToken = "<cs371server>"

	// dateLayout renders the local calendar date as MM-DD-YYYY.
	dateLayout = "01-02-2006"
)

// Renderer substitutes the date and server-name tokens in text resources.
type Renderer struct {
	ServerName string
	Now        func() time.Time // nil means time.Now
}

// RenderFile renders one text resource. Failure to open or read the file is
// returned to the caller, which downgrades the request to 404; the earlier
// existence check and this read are not atomic.
func (r *Renderer) RenderFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.render(f)
}

// render reads src line by line, replaces every token occurrence on each
// line, and concatenates the results. Line terminators are not reinserted;
// the output is one unbroken string.
func (r *Renderer) render(src io.Reader) (string, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	date := now().Format(dateLayout)

	var b strings.Builder
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		line = strings.ReplaceAll(line, dateToken, date)
		line = strings.ReplaceAll(line, serverToken, r.ServerName)
		b.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
