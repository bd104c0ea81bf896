package domain

import (
	"errors"
	"net/url"
	"strings"
)

// ProbeTarget identifies the inference service under test.
type ProbeTarget struct {
	URL string `json:"url"`
}

// NewTarget normalises raw into a target. A missing scheme defaults to http
// since the service is usually reached on a local node port.
func NewTarget(raw string) (ProbeTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProbeTarget{}, errors.New("target url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return ProbeTarget{}, err
	}
	if u.Host == "" {
		return ProbeTarget{}, errors.New("target url has no host")
	}
	return ProbeTarget{URL: strings.TrimRight(u.String(), "/")}, nil
}

func (t ProbeTarget) HealthURL() string { return t.URL + "/health" }

// Host returns the hostname without port, or the raw URL if it cannot be parsed.
func (t ProbeTarget) Host() string {
	u, err := url.Parse(t.URL)
	if err != nil || u.Hostname() == "" {
		return t.URL
	}
	return u.Hostname()
}

// HostPort returns host:port, filling in the scheme's default port.
func (t ProbeTarget) HostPort() string {
	u, err := url.Parse(t.URL)
	if err != nil || u.Hostname() == "" {
		return t.URL
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return u.Hostname() + ":443"
	}
	return u.Hostname() + ":80"
}

func (t ProbeTarget) String() string { return t.URL }

// PromptRequest is the completion payload accepted by the service.
type PromptRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature *float64 `json:"temperature,omitempty"`
}
