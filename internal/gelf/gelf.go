package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends each log line as a GELF message over UDP. It is an
// io.Writer so it can sit behind log.SetOutput via io.MultiWriter.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New dials addr (e.g. "172.17.0.1:12201"). Messages carry service as
// their _service field.
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// Write sends one message per call and never fails the log call.
// Lines from the log package look like "2026/02/19 18:43:52 message\n";
// the date prefix and trailing newline are stripped.
func (w *Writer) Write(p []byte) (int, error) {
	short := stripLogPrefix(strings.TrimRight(string(p), "\n"))

	payload, err := json.Marshal(map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": short,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         Level(short),
		"_service":      w.service,
	})
	if err != nil {
		return len(p), nil
	}

	// Fire-and-forget
	w.conn.Write(payload)
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}

// Level maps a message to a syslog severity: 3 for panics and fatals,
// 4 for "Warning:" lines, 6 otherwise.
func Level(msg string) int {
	switch {
	case strings.Contains(msg, "PANIC:") || strings.Contains(msg, "Fatal"):
		return 3
	case strings.HasPrefix(msg, "Warning:"):
		return 4
	default:
		return 6
	}
}

// stripLogPrefix drops a "2006/01/02 15:04:05 " prefix when present.
func stripLogPrefix(msg string) string {
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' && msg[13] == ':' {
		return msg[20:]
	}
	return msg
}
