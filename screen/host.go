package screen

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"vfdd/frame"
)

const (
	defaultIPLookupURL = "https://ifconfig.me"
	ipLookupTimeout    = 5 * time.Second
	ipCacheTTL         = 20 * time.Second
	ipUnknown          = "?.?.?.?"

	maxIPBodyBytes = 256
)

// HostIP shows the hostname and the cached external IP address. The
// lookup is bounded so a slow or dead endpoint cannot stall the
// rotation path; failures fall back to a placeholder and are retried
// once the cache entry ages out.
type HostIP struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	ip        string
	fetchedAt time.Time
}

func NewHostIP(url string) *HostIP {
	if strings.TrimSpace(url) == "" {
		url = defaultIPLookupURL
	}
	return &HostIP{
		url:    url,
		client: &http.Client{},
	}
}

func (h *HostIP) Name() string {
	return "host"
}

func (h *HostIP) Frame(now time.Time) (frame.Frame, bool) {
	host, err := os.Hostname()
	if err != nil {
		host = "?"
	}
	return frame.Frame{
		Line1: frame.Truncate(host),
		Line2: h.externalIP(now),
	}, true
}

// externalIP serves from the cache while fresh, otherwise performs a
// bounded lookup. The cache is refreshed even on failure so a dead
// endpoint is probed at most once per TTL.
func (h *HostIP) externalIP(now time.Time) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ip != "" && now.Sub(h.fetchedAt) < ipCacheTTL {
		return h.ip
	}
	h.ip = h.fetch()
	h.fetchedAt = now
	return h.ip
}

func (h *HostIP) fetch() string {
	ctx, cancel := context.WithTimeout(context.Background(), ipLookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return ipUnknown
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return ipUnknown
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ipUnknown
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIPBodyBytes))
	if err != nil {
		return ipUnknown
	}
	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return ipUnknown
	}
	return frame.Truncate(ip)
}
