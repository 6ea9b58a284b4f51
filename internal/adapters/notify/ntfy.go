package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// DefaultServer is the public ntfy instance.
const DefaultServer = "https://ntfy.sh"

const (
	maxTitleRunes = 100
	defaultTitle  = "Fermi Notification"
	tags          = "brain,puzzle"
)

// delayPattern accepts a positive integer followed by s, m, h or d.
var delayPattern = regexp.MustCompile(`^[0-9]+[smhd]$`)

// Request is a single push notification.
type Request struct {
	Title string
	Body  string
	Delay string
}

// NtfyClient implements domain.Notifier for an ntfy server topic.
type NtfyClient struct {
	server string
	topic  string
	client *http.Client
}

// NewNtfyClient creates a notifier that publishes to server/topic.
func NewNtfyClient(server, topic string, client *http.Client) *NtfyClient {
	if server == "" {
		server = DefaultServer
	}
	return &NtfyClient{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		client: client,
	}
}

// Notify implements domain.Notifier. A delay that is not a valid duration
// token is dropped and the notification goes out immediately.
func (n *NtfyClient) Notify(ctx context.Context, titlePrefix, body, delay string) error {
	url := n.server + "/" + n.topic
	log := observability.WithFields(ctx,
		"topic", n.topic,
		"message_len", len(body),
	)

	req := NewRequest(titlePrefix, body, delay)
	if delay != "" && req.Delay == "" {
		log.Warn("invalid delay format, sending immediately", "delay", delay)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(req.Body))
	if err != nil {
		return fmt.Errorf("%w: building notification request: %v", domain.ErrInternal, err)
	}
	httpReq.Header.Set("Title", req.Title)
	httpReq.Header.Set("Tags", tags)
	if req.Delay != "" {
		httpReq.Header.Set("X-Delay", req.Delay)
		log.Info("scheduling notification with delay", "delay", req.Delay)
	}

	log.Info("sending notification", "url", url, "title", req.Title)

	resp, err := n.client.Do(httpReq)
	if err != nil {
		log.Error("notification request failed", "error", err)
		return &domain.TransportError{Op: "calling notification service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := "failed to read error body"
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); rerr == nil {
			errBody = string(b)
		}
		log.Error("notification service returned error status", "status", resp.StatusCode, "error_body", errBody)
		return &domain.NotificationError{Status: resp.StatusCode, Body: errBody}
	}

	log.Info("notification sent")
	return nil
}

// NewRequest derives the title from the first line of body and keeps delay
// only when ValidDelay accepts it.
func NewRequest(titlePrefix, body, delay string) Request {
	r := Request{
		Title: truncateRunes(titlePrefix+firstLine(body), maxTitleRunes),
		Body:  body,
	}
	if ValidDelay(delay) {
		r.Delay = delay
	}
	return r
}

// ValidDelay reports whether d is a duration token such as 30s, 10m, 2h or 1d.
func ValidDelay(d string) bool {
	return delayPattern.MatchString(d)
}

// firstLine falls back to defaultTitle only for an empty body; a body whose
// first line is blank yields an empty title suffix.
func firstLine(body string) string {
	if body == "" {
		return defaultTitle
	}
	line, _, _ := strings.Cut(body, "\n")
	line, _, _ = strings.Cut(line, "\r")
	return strings.TrimSpace(line)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
