// Package fetcher downloads a policy page and extracts its readable text.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/pkg/extract"
)

var (
	ErrUnsupportedURL = errors.New("policy url must be absolute http(s)")
	ErrBlockedAddress = errors.New("policy url resolves to a private or local address")
)

// Carrier-grade NAT range; netip has no predicate for it.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

type FetcherConfig struct {
	RateLimit float64 // requests per second
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string

	// AllowPrivateHosts lets requests reach loopback, private and
	// link-local addresses.
	AllowPrivateHosts bool
}

type Fetcher struct {
	config  FetcherConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 20 << 20
	}
	if config.UserAgent == "" {
		config.UserAgent = "polisum/1.0"
	}

	return &Fetcher{
		config:  config,
		client:  newClient(config),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// newClient checks every dialed address, so redirects and DNS answers
// pointing at internal hosts are refused too.
func newClient(config FetcherConfig) *http.Client {
	dialer := &net.Dialer{Timeout: config.Timeout}
	if !config.AllowPrivateHosts {
		dialer.Control = publicOnly
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Timeout: config.Timeout, Transport: transport}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || blocked(ip.Unmap()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func blocked(ip netip.Addr) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		sharedAddressSpace.Contains(ip)
}

// Fetch downloads rawURL and returns its main text content. HTML pages are
// reduced to their main content area; PDF responses are extracted page by
// page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (models.Document, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return models.Document{}, ErrUnsupportedURL
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return models.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Document{}, err
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, u)
	}

	body := io.LimitReader(resp.Body, f.config.MaxBytes)
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	document := models.Document{
		Source: models.SourceURL,
		Name:   u.String(),
		Metadata: map[string]interface{}{
			"time":         time.Now(),
			"contentType":  contentType,
			"lastModified": resp.Header.Get("Last-Modified"),
		},
	}

	if mediaType == "application/pdf" || extract.IsPDFName(u.Path) {
		data, err := io.ReadAll(body)
		if err != nil {
			return models.Document{}, fmt.Errorf("failed to read %s: %w", u, err)
		}
		document.Content, err = extract.PDFBytes(data)
		if err != nil {
			return models.Document{}, err
		}
		return document, nil
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to parse %s: %w", u, err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		document.Metadata["title"] = title
	}
	document.Content = extractMainContent(doc)

	log.Debug().Str("url", u.String()).Int("chars", len(document.Content)).Msg("fetched policy page")

	return document, nil
}

func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, form").Remove()

	selectors := []string{
		"main",
		"article",
		"[role=main]",
		".content",
		"#content",
		".policy",
		"#policy",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.First().Text()
			break
		}
	}

	if strings.TrimSpace(content) == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}

func cleanContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")

	noisePatterns := []string{
		"Accept all cookies",
		"Accept Cookies",
		"Skip to main content",
		"Back to top",
	}
	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.Join(strings.Fields(content), " ")
}
