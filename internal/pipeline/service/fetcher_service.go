package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/config"
	"golang-legal-news-pipeline/internal/pipeline/dto"
	"golang-legal-news-pipeline/internal/pipeline/repository"
	"golang-legal-news-pipeline/pkg/logger"
	"golang-legal-news-pipeline/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetcherService pulls new articles from the configured legal-news sources
// and stores them, deduplicated by URL.
type FetcherService interface {
	FetchAll(ctx context.Context) (*dto.FetchResult, error)
}

// NewFetcherService creates a new FetcherService.
func NewFetcherService(cfg *config.Config, log *logger.Logger, articleRepo repository.ArticleRepository) FetcherService {
	return &fetcherService{
		cfg:         cfg,
		logger:      log,
		articleRepo: articleRepo,
		client:      &http.Client{Timeout: 30 * time.Second},
		seenCache:   cache.New(30*time.Minute, 10*time.Minute),
	}
}

type fetcherService struct {
	cfg         *config.Config
	logger      *logger.Logger
	articleRepo repository.ArticleRepository
	client      *http.Client
	seenCache   *cache.Cache
}

// FetchAll fetches every enabled source concurrently. One source failing
// never aborts the others; per-source outcomes are merged into the result.
func (s *fetcherService) FetchAll(ctx context.Context) (*dto.FetchResult, error) {
	result := &dto.FetchResult{}

	maxConcurrent := s.cfg.Fetcher.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	semaphore := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, source := range s.cfg.Fetcher.Sources {
		if !source.Enabled {
			continue
		}
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		source := source
		result.SourcesTried++

		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			articles, err := s.fetchSource(ctx, source)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Failed to fetch source", logger.ErrorField(err), logger.StringField("source", source.Name))
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", source.Name, err))
				return
			}
			inserted, skipped, err := s.articleRepo.CreateBatch(ctx, articles)
			result.Inserted += inserted
			result.Skipped += skipped
			if err != nil {
				s.logger.Error("Failed to store articles", logger.ErrorField(err), logger.StringField("source", source.Name))
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", source.Name, err))
				return
			}
			s.logger.Info("Fetched source",
				logger.StringField("source", source.Name),
				logger.IntField("inserted", inserted),
				logger.IntField("skipped", skipped),
			)
		})
	}

	wg.Wait()
	return result, nil
}

func (s *fetcherService) fetchSource(ctx context.Context, source config.Source) ([]entity.Article, error) {
	switch source.Type {
	case "rss":
		return s.fetchRSS(ctx, source)
	case "scrape":
		return s.scrapeListing(ctx, source)
	default:
		return nil, fmt.Errorf("unknown source type %q", source.Type)
	}
}

func (s *fetcherService) fetchRSS(ctx context.Context, source config.Source) ([]entity.Article, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var articles []entity.Article
	now := utils.TimeNowEastern()
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		if _, seen := s.seenCache.Get(item.Link); seen {
			continue
		}
		s.seenCache.Set(item.Link, struct{}{}, cache.DefaultExpiration)

		article := entity.Article{
			URL:           item.Link,
			Title:         utils.CleanToValidUTF8(item.Title),
			Summary:       utils.CleanToValidUTF8(stripHTML(item.Description)),
			Source:        source.Name,
			PublishedDate: item.Published,
			FetchedDate:   now,
		}
		if item.PublishedParsed != nil {
			article.PublishedDate = item.PublishedParsed.Format(time.RFC3339)
		}
		if s.cfg.Fetcher.FetchFullContent {
			content, err := s.fetchFullContent(ctx, item.Link)
			if err != nil {
				s.logger.Warn("Failed to fetch full content, keeping summary only",
					logger.ErrorField(err), logger.StringField("url", item.Link))
			} else {
				article.Content = content
			}
			s.delay()
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// scrapeListing extracts article links from an HTML listing page using the
// source's CSS selector, then fetches each linked page.
func (s *fetcherService) scrapeListing(ctx context.Context, source config.Source) ([]entity.Article, error) {
	body, err := s.get(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	selector := source.Selector
	if selector == "" {
		selector = "article a"
	}

	var articles []entity.Article
	now := utils.TimeNowEastern()
	doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if !utils.ShouldContinue(ctx, s.logger) {
			return false
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		href = base.ResolveReference(ref).String()
		if _, seen := s.seenCache.Get(href); seen {
			return true
		}
		s.seenCache.Set(href, struct{}{}, cache.DefaultExpiration)

		title := utils.CollapseWhitespace(sel.Text())
		if title == "" {
			return true
		}

		article := entity.Article{
			URL:         href,
			Title:       utils.CleanToValidUTF8(title),
			Source:      source.Name,
			FetchedDate: now,
		}
		if s.cfg.Fetcher.FetchFullContent {
			content, err := s.fetchFullContent(ctx, href)
			if err != nil {
				s.logger.Warn("Failed to fetch full content",
					logger.ErrorField(err), logger.StringField("url", href))
			} else {
				article.Content = content
			}
			s.delay()
		}
		articles = append(articles, article)
		return true
	})
	return articles, nil
}

// fetchFullContent downloads one article page and extracts its readable
// text.
func (s *fetcherService) fetchFullContent(ctx context.Context, url string) (string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return "", err
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}
	content := doc.Content()

	docHTML, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}
	return utils.CleanToValidUTF8(utils.CollapseWhitespace(docHTML.Text())), nil
}

func (s *fetcherService) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	ua := s.cfg.Fetcher.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *fetcherService) delay() {
	if s.cfg.Fetcher.DelaySeconds > 0 {
		time.Sleep(time.Duration(s.cfg.Fetcher.DelaySeconds) * time.Second)
	}
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return utils.CollapseWhitespace(doc.Text())
}
