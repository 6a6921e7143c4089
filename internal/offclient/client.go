package offclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/foodlens/offcache/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrUpstreamUnavailable marks transient fetch failures: transport errors,
// TLS problems, or unexpected upstream statuses. Callers may retry or fall
// back to the cache; the client never retries on its own.
var ErrUpstreamUnavailable = errors.New("upstream_unavailable")

const maxSearchPageSize = 100

type Params struct {
	fx.In

	Cfg     config.Config
	SyncCfg *config.SyncConfigHolder
	Log     *zap.Logger
}

// Client talks to the OpenFoodFacts HTTP API.
type Client struct {
	baseURL   string
	userAgent string
	syncCfg   *config.SyncConfigHolder
	http      *http.Client
	log       *zap.Logger
}

func New(p Params) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Custom trust stores show up behind corporate proxies; a CA bundle
	// wins over disabling verification outright.
	switch {
	case p.Cfg.OFFCABundle != "":
		pem, err := os.ReadFile(p.Cfg.OFFCABundle)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %s holds no certificates", p.Cfg.OFFCABundle)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	case !p.Cfg.OFFSSLVerify:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:   p.Cfg.OFFBaseURL,
		userAgent: p.Cfg.OFFUserAgent,
		syncCfg:   p.SyncCfg,
		http: &http.Client{
			Timeout:   p.Cfg.OFFTimeout,
			Transport: transport,
		},
		log: p.Log.Named("offclient"),
	}, nil
}

// FetchPage fetches one page of recently modified products for a country via
// the legacy search endpoint. Some upstream instances reject the country
// filter parameter; those are retried once without it.
func (c *Client) FetchPage(ctx context.Context, country string, page, pageSize int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("sort_by", "last_modified_t")
	params.Set("fields", c.fields())
	if country = strings.TrimSpace(country); country != "" {
		params.Set("countries_tags_en", country)
	}

	payload, status, err := c.get(ctx, "/cgi/search.pl", params)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
		params.Del("countries_tags_en")
		payload, status, err = c.get(ctx, "/cgi/search.pl", params)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search page %d: status %d: %w", page, status, ErrUpstreamUnavailable)
	}

	return productsField(payload), nil
}

// FetchByCode fetches a single product by barcode via API v2. A missing
// product is (nil, nil), not an error.
func (c *Client) FetchByCode(ctx context.Context, code string) (map[string]any, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("fields", c.fields())

	payload, status, err := c.get(ctx, "/api/v2/product/"+url.PathEscape(code)+".json", params)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d: %w", code, status, ErrUpstreamUnavailable)
	}

	product, ok := payload["product"].(map[string]any)
	if !ok || strings.TrimSpace(textField(product, "code")) == "" {
		return nil, nil
	}
	return product, nil
}

// SearchByName searches products online by free text.
func (c *Client) SearchByName(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchPageSize {
		limit = maxSearchPageSize
	}

	params := url.Values{}
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("search_terms", query)
	params.Set("page", "1")
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("fields", c.fields())

	payload, status, err := c.get(ctx, "/cgi/search.pl", params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search %q: status %d: %w", query, status, ErrUpstreamUnavailable)
	}

	return productsField(payload), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %v: %w", path, err, ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Let callers inspect the expected non-2xx statuses.
		return nil, resp.StatusCode, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: decode: %v: %w", path, err, ErrUpstreamUnavailable)
	}
	return payload, resp.StatusCode, nil
}

func (c *Client) fields() string {
	return strings.Join(c.syncCfg.Get().Fields, ",")
}

func productsField(payload map[string]any) []map[string]any {
	raw, _ := payload["products"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		product, ok := entry.(map[string]any)
		if !ok || strings.TrimSpace(textField(product, "code")) == "" {
			continue
		}
		out = append(out, product)
	}
	return out
}

func textField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
