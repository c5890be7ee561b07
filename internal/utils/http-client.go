package utils

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
	IndexToken    string // bearer token for authenticated package indexes
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	SetHeader(key, value string)
}

// MirrorHTTPClient wraps *http.Client with the shared config. Redirects
// follow the net/http default (up to 10 hops).
type MirrorHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewMirrorHTTPClient(cfg HTTPClientConfig) *MirrorHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
		MaxConnsPerHost:     0,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	var rt http.RoundTripper = transport
	if cfg.IndexToken != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.IndexToken}),
			Base:   transport,
		}
	}
	return &MirrorHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: rt,
		},
		config: cfg,
	}
}

func (m *MirrorHTTPClient) SetHeader(key, value string) {
	m.config.Headers[key] = value
}

func (m *MirrorHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if m.config.UserAgent != "" {
		req.Header.Set("User-Agent", m.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	for k, v := range m.config.Headers {
		req.Header.Set(k, v)
	}
	return m.client.Do(req)
}
