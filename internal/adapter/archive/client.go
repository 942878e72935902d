// Package archive downloads composite grid files from the radar archive's
// HTTP directory listing.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/radar-point/internal/observability"
)

// Stats summarizes one fetch run.
type Stats struct {
	Found      int // listing entries matching the date
	Downloaded int
	Skipped    int // already present locally
	Failed     int
}

// Client fetches composite files published on the archive server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an archive client for the given listing URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchDate downloads every composite file for the given day (formatted
// 2006-01-02) that is not already present in destDir. Individual download
// failures are logged and counted but do not stop the remaining files; only
// an unreadable listing or a cancelled context aborts the run.
func (c *Client) FetchDate(ctx context.Context, date, destDir string) (Stats, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Stats{}, fmt.Errorf("parse date %q: %w", date, err)
	}

	names, err := c.listFiles(ctx, day)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Found: len(names)}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		destPath := filepath.Join(destDir, name)
		if _, err := os.Stat(destPath); err == nil {
			stats.Skipped++
			c.metrics.Downloads.WithLabelValues("skipped").Inc()
			c.logger.Debug("file already present", "file", name)
			continue
		}

		n, err := c.download(ctx, name, destPath)
		if err != nil {
			stats.Failed++
			c.metrics.Downloads.WithLabelValues("failed").Inc()
			c.logger.Warn("download failed", "file", name, "error", err)
			continue
		}

		stats.Downloaded++
		c.metrics.Downloads.WithLabelValues("downloaded").Inc()
		c.metrics.DownloadBytes.Add(float64(n))
		c.logger.Info("downloaded file", "file", name, "bytes", n)
	}

	return stats, nil
}

// listFiles fetches the directory listing and returns the composite file
// names published for the given day. Only entries that are bare local
// filenames qualify; anything else is logged and dropped.
func (c *Client) listFiles(ctx context.Context, day time.Time) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive listing: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	pattern := regexp.MustCompile(`^Composite\.` + day.Format("20060102") + `.*\.h5$`)

	var names []string
	seen := make(map[string]bool)
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !pattern.MatchString(href) || seen[href] {
			return
		}
		seen[href] = true
		// The date pattern alone does not make href a bare filename; path
		// separators in a crafted entry would escape destDir when joined.
		if href != filepath.Base(href) || !filepath.IsLocal(href) {
			c.logger.Warn("ignoring unsafe listing entry", "href", href)
			return
		}
		names = append(names, href)
	})

	return names, nil
}

// download streams one file to destPath via a .partial staging file, so a
// failed transfer never leaves a truncated composite behind.
func (c *Client) download(ctx context.Context, name, destPath string) (int64, error) {
	fileURL, err := url.JoinPath(c.baseURL, name)
	if err != nil {
		return 0, fmt.Errorf("build file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}

	partial := destPath + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", partial, err)
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		os.Remove(partial)
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(partial)
		return 0, fmt.Errorf("close %s: %w", partial, err)
	}

	if err := os.Rename(partial, destPath); err != nil {
		os.Remove(partial)
		return 0, fmt.Errorf("finalize %s: %w", name, err)
	}

	return n, nil
}
