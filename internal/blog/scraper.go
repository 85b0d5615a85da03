// Package blog mines a company blog for posts that mention exchange products.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"mktdata/internal/fetch"
	"mktdata/internal/transport"
)

// Renderer returns the HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// HTTPRenderer renders pages with a plain GET. Scripts are not executed.
type HTTPRenderer struct {
	Client transport.Getter
}

func (r HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	resp, err := r.Client.Get(ctx, url, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", fetch.ErrTransport, err)
	}
	return string(resp.Body), nil
}

// Post is one mined blog post.
type Post struct {
	Title     string
	URL       string
	Timestamp string
	Content   string // raw page HTML
	Text      string // article text
	Matched   []Product
}

// Config for a Scraper.
type Config struct {
	BlogURL     string
	ProductsURL string
}

// Scraper walks the blog index, its menu pages and every linked post.
type Scraper struct {
	cfg      Config
	renderer Renderer
	client   transport.Getter
	logger   *slog.Logger
}

func NewScraper(cfg Config, renderer Renderer, client transport.Getter, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{cfg: cfg, renderer: renderer, client: client, logger: logger.With("blog", cfg.BlogURL)}
}

// Run collects the posts in first-seen order and matches each against the
// product catalog. The index page and the catalog are required; a menu or post
// page that fails to load is logged and skipped.
func (s *Scraper) Run(ctx context.Context) ([]Post, error) {
	index, err := s.page(ctx, s.cfg.BlogURL)
	if err != nil {
		return nil, fmt.Errorf("blog index: %w", err)
	}
	var links linkSet
	links.merge(ParsePostLinks(index))

	menus := MenuURLs(index)
	s.logger.Info("index parsed", "posts", len(links.items), "menus", len(menus))
	for _, u := range menus {
		doc, err := s.page(ctx, u)
		if err != nil {
			s.logger.Warn("skip menu page", "url", u, "error", err)
			continue
		}
		links.merge(ParsePostLinks(doc))
	}

	products, err := FetchProducts(ctx, s.client, s.cfg.ProductsURL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("products loaded", "count", len(products))

	posts := make([]Post, 0, len(links.items))
	for _, l := range links.items {
		content, err := s.renderer.Render(ctx, l.URL)
		if err != nil {
			s.logger.Warn("skip post", "title", l.Title, "url", l.URL, "error", err)
			continue
		}
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			s.logger.Warn("skip post", "title", l.Title, "url", l.URL, "error", err)
			continue
		}
		p := Post{
			Title:     l.Title,
			URL:       l.URL,
			Timestamp: ParseDate(doc),
			Content:   content,
			Text:      ArticleText(doc),
		}
		if p.Timestamp == "" {
			s.logger.Warn("post without datePublished", "url", l.URL)
		}
		p.Matched = Match(products, p.Text)
		s.logger.Debug("post mined", "title", p.Title, "matched", len(p.Matched))
		posts = append(posts, p)
	}
	s.logger.Info("blog mined", "posts", len(posts))
	return posts, nil
}

func (s *Scraper) page(ctx context.Context, url string) (*html.Node, error) {
	content, err := s.renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fetch.ErrParse, url, err)
	}
	return doc, nil
}
