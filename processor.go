package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aktagon/ldcard/avatar"
	"github.com/aktagon/ldcard/avatar/redisstore"
	"github.com/aktagon/ldcard/avatar/sqlitestore"
	"github.com/aktagon/ldcard/card"
	"github.com/aktagon/ldcard/jsonld"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// CardProcessor handles the main workflow
type CardProcessor struct {
	fetcher   *DocumentFetcher
	resolver  *avatar.Resolver
	assembler *card.Assembler
	config    *Config
	logger    *slog.Logger
	closers   []io.Closer

	stdoutMu sync.Mutex
	stdout   io.Writer
}

// NewCardProcessor creates a processor wired to the configured avatar store
func NewCardProcessor(config *Config, logger *slog.Logger) (*CardProcessor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, closer, err := openStore(config.Settings.Avatar)
	if err != nil {
		return nil, fmt.Errorf("opening avatar store: %w", err)
	}

	appViewOptions := []avatar.AppViewOption{avatar.WithEndpoint(config.Settings.Avatar.Endpoint)}
	if timeout := config.Settings.Avatar.Timeout; timeout > 0 {
		appViewOptions = append(appViewOptions, avatar.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	adapter := avatar.NewAppViewAdapter(appViewOptions...)
	options := []avatar.Option{avatar.WithLogger(logger)}
	if store != nil {
		options = append(options, avatar.WithStore(store))
	}
	resolver := avatar.NewResolver([]avatar.Adapter{adapter}, options...)

	cp := &CardProcessor{
		fetcher:   NewDocumentFetcher(logger),
		resolver:  resolver,
		assembler: card.NewAssembler(resolver, card.WithLogger(logger)),
		config:    config,
		logger:    logger,
		stdout:    os.Stdout,
	}
	if closer != nil {
		cp.closers = append(cp.closers, closer)
	}
	return cp, nil
}

// Close releases the avatar store
func (cp *CardProcessor) Close() error {
	var firstErr error
	for _, c := range cp.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ProcessSources processes every source, at most settings.Concurrency at a
// time. Results keep the order of sources.
func (cp *CardProcessor) ProcessSources(ctx context.Context, sources []string) []ProcessingResult {
	results := make([]ProcessingResult, len(sources))

	cp.logger.Info("processing sources", "count", len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cp.config.Settings.Concurrency)
	for i, source := range sources {
		g.Go(func() error {
			cp.logger.Info("processing source", "index", i+1, "total", len(sources), "source", source)
			results[i] = cp.ProcessSource(gctx, source)
			return nil
		})
	}
	g.Wait()

	return results
}

// ProcessSource renders the card for a single source
func (cp *CardProcessor) ProcessSource(ctx context.Context, source string) ProcessingResult {
	settings := cp.config.Settings

	doc, err := cp.fetcher.FetchDocument(ctx, source)
	if err != nil {
		return ProcessingResult{
			Source: source,
			Status: StatusError,
			Error:  fmt.Errorf("fetching source: %w", err),
		}
	}

	view, ok := jsonld.Extract(doc.Records)
	if !ok {
		return ProcessingResult{Source: source, Status: StatusSkipped, Reason: "no Article record"}
	}

	// Without a place to put the card nothing is built, so no avatar
	// lookup starts either.
	if cp.config.Embed() {
		if doc.HTML == nil {
			return ProcessingResult{Source: source, Status: StatusSkipped, Reason: "source is not an HTML document"}
		}
		if _, found := card.FindContainer(doc.HTML, settings.ContainerID); !found {
			return ProcessingResult{Source: source, Status: StatusSkipped, Headline: view.Headline, Reason: "container #" + settings.ContainerID + " not found"}
		}
	}

	c, lookup := cp.assembler.Assemble(view)

	var page *card.Page
	if cp.config.Embed() {
		page, ok = card.Attach(doc.HTML, settings.ContainerID, c)
		if !ok {
			return ProcessingResult{Source: source, Status: StatusSkipped, Headline: view.Headline, Reason: "container #" + settings.ContainerID + " not found"}
		}
	}

	avatarURL := view.AuthorImage
	if lookup != nil {
		avatarURL = cp.awaitAvatar(ctx, c, lookup)
	}

	output, err := cp.render(c, page)
	if err != nil {
		return ProcessingResult{
			Source: source,
			Status: StatusError,
			Error:  fmt.Errorf("rendering card: %w", err),
		}
	}

	filename, err := cp.write(source, view.Headline, output)
	if err != nil {
		return ProcessingResult{
			Source: source,
			Status: StatusError,
			Error:  fmt.Errorf("saving card: %w", err),
		}
	}

	return ProcessingResult{
		Source:   source,
		Status:   StatusSuccess,
		Filename: filename,
		Headline: view.Headline,
		Avatar:   avatarURL,
	}
}

// awaitAvatar waits up to the configured duration for a pending lookup. The
// card is patched here as well as by the lookup callback so the rendered
// output does not depend on callback scheduling.
func (cp *CardProcessor) awaitAvatar(ctx context.Context, c *card.Card, lookup *avatar.Lookup) string {
	wait := cp.config.Settings.Avatar.Wait
	if wait <= 0 {
		url, _ := lookup.Settled()
		c.PatchAvatar(url)
		return url
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	url, err := lookup.Wait(waitCtx)
	if err != nil {
		cp.logger.Debug("rendering without avatar", "reason", err)
		return ""
	}
	c.PatchAvatar(url)
	return url
}

func (cp *CardProcessor) render(c *card.Card, page *card.Page) (string, error) {
	if page != nil {
		return page.HTML()
	}
	if cp.config.Settings.Format == formatMarkdown {
		return c.Markdown()
	}
	return c.HTML()
}

// write saves the output under the output directory, or prints it when the
// directory is "-"
func (cp *CardProcessor) write(source, headline, output string) (string, error) {
	dir := cp.config.Settings.OutputDirectory
	if dir == stdoutDirectory {
		cp.stdoutMu.Lock()
		defer cp.stdoutMu.Unlock()
		if _, err := fmt.Fprintln(cp.stdout, output); err != nil {
			return "", err
		}
		return stdoutDirectory, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	filename := filepath.Join(dir, cp.generateFilename(source, headline))
	if err := os.WriteFile(filename, []byte(output), 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// generateFilename combines the headline slug with a hash of the source so
// distinct sources never overwrite each other
func (cp *CardProcessor) generateFilename(source, headline string) string {
	ext := ".html"
	if cp.config.Settings.Format == formatMarkdown {
		ext = ".md"
	}
	return fmt.Sprintf("%s-%s%s", generateSlugFromTitle(headline), generateSourceHash(source), ext)
}

// generateSlugFromTitle creates a URL slug from an article title
func generateSlugFromTitle(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	// Limit length to avoid filesystem issues
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}

	if slug == "" {
		return "card"
	}
	return slug
}

// generateSourceHash returns the first 8 hex characters of the source's SHA-256
func generateSourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])[:8]
}

// loadSourceList loads sources from a YAML list file
func loadSourceList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources list: %w", err)
	}

	var list SourceList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing sources list: %w", err)
	}

	sources := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if s := strings.TrimSpace(item.Source); s != "" {
			sources = append(sources, s)
		}
	}
	return sources, nil
}

// openStore builds the configured avatar store; memory needs none
func openStore(settings AvatarSettings) (avatar.Store, io.Closer, error) {
	switch settings.Store {
	case "", storeMemory:
		return nil, nil, nil
	case storeSQLite:
		if dir := filepath.Dir(settings.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
		store, err := sqlitestore.Open(settings.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case storeRedis:
		store, err := redisstore.NewFromURL(settings.Redis.URL, settings.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported avatar store %q", settings.Store)
	}
}
