package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"webshot/internal/log"
	"webshot/internal/util/htmlwalk"
)

const discoveryTimeout = 30 * time.Second

// NormalizeSeed prepends https:// when the seed has no scheme.
func NormalizeSeed(seed string) string {
	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		return "https://" + seed
	}
	return seed
}

// baseDomain approximates the registrable domain as the last two dot-separated
// labels of the host. Hosts with two or fewer labels are used verbatim.
// Multi-label public suffixes such as co.uk are a known limitation.
func baseDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// sameSite reports whether host belongs to the base domain. This is a
// suffix-boundary match, so evil-example.com does not match example.com.
func sameSite(host, base string) bool {
	return strings.EqualFold(host, base) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(base))
}

// DiscoverURLs fetches the seed document once, extracts every hyperlink
// target, resolves it against the seed, and returns the deduplicated, sorted
// set of same-site URLs. The normalized seed is always included. Any network
// or parse failure degrades to a seed-only result; discovery never fails.
func DiscoverURLs(ctx context.Context, seed string) []string {
	seed = NormalizeSeed(seed)

	seedURL, err := url.Parse(seed)
	if err != nil || seedURL.Host == "" {
		log.Logger.Warn("unparseable seed, using it verbatim",
			zap.String("seed", seed),
			zap.Error(err),
		)
		return []string{seed}
	}

	base := baseDomain(seedURL.Hostname())
	log.Logger.Info("starting URL discovery",
		zap.String("seed", seed),
		zap.String("base_domain", base),
	)

	hrefs, err := fetchAnchors(ctx, seed)
	if err != nil {
		log.Logger.Warn("discovery degraded to seed only",
			zap.String("seed", seed),
			zap.Error(err),
		)
		return []string{seed}
	}

	found := map[string]struct{}{seed: {}}
	for _, href := range hrefs {
		parsed, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved := seedURL.ResolveReference(parsed)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if !sameSite(resolved.Hostname(), base) {
			continue
		}
		found[resolved.String()] = struct{}{}
	}

	urls := make([]string, 0, len(found))
	for u := range found {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	log.Logger.Info("URL discovery finished",
		zap.String("seed", seed),
		zap.Int("url_count", len(urls)),
	)
	return urls
}

// fetchAnchors retrieves the seed document and returns its hyperlink targets.
// One GET, no retries.
func fetchAnchors(ctx context.Context, seed string) ([]string, error) {
	client := &http.Client{
		Timeout: discoveryTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, seed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return htmlwalk.Anchors(root), nil
}
