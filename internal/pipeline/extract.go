package pipeline

import (
	"context"
	"net/url"
	"strings"
	"time"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/roelfdiedericks/chatextract/internal/browser"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// RawContent is one extraction attempt's unfiltered text.
type RawContent struct {
	Text        string
	SourceTab   browser.Tab
	ExtractedAt time.Time
}

// Extractor captures page content. It never filters; that is the
// cleaner's job.
type Extractor struct {
	ctrl browser.Controller
}

// NewExtractor returns an Extractor over ctrl.
func NewExtractor(ctrl browser.Controller) *Extractor {
	return &Extractor{ctrl: ctrl}
}

// Extract captures tab content in the requested format. Empty results and
// the AppleScript "missing value" sentinel fail with EmptyPageError.
func (e *Extractor) Extract(ctx context.Context, tab browser.Tab, format Format) (RawContent, error) {
	start := time.Now()

	var text string
	var err error
	switch format {
	case FormatArticle, FormatMarkdown:
		text, err = e.converted(ctx, tab, format)
	default:
		text, err = e.innerText(ctx, tab)
	}
	if err != nil {
		return RawContent{}, err
	}

	if strings.TrimSpace(text) == "" || strings.TrimSpace(text) == browser.MissingValue {
		return RawContent{}, &EmptyPageError{Tab: tab.String(), Reason: "page returned no text"}
	}

	L_debug("extractor: captured", "tab", tab.String(), "format", format, "chars", len([]rune(text)), "took", time.Since(start))
	return RawContent{Text: text, SourceTab: tab, ExtractedAt: time.Now()}, nil
}

func (e *Extractor) innerText(ctx context.Context, tab browser.Tab) (string, error) {
	return e.ctrl.RunScript(ctx, tab, innerTextJS)
}

// converted fetches the rendered HTML and converts it, falling back to
// innerText when conversion fails or yields nothing.
func (e *Extractor) converted(ctx context.Context, tab browser.Tab, format Format) (string, error) {
	html, err := e.ctrl.RunScript(ctx, tab, outerHTMLJS)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(html) == "" || html == browser.MissingValue {
		return "", &EmptyPageError{Tab: tab.String(), Reason: "page returned no HTML"}
	}

	var text string
	switch format {
	case FormatMarkdown:
		text, err = htmltomd.ConvertString(pruneChrome(html))
	default:
		text, err = articleText(html, tab.URL)
	}
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	L_warn("extractor: conversion failed, using raw text", "format", format, "error", err)
	return e.innerText(ctx, tab)
}

// articleText runs readability over html and returns the article body text.
func articleText(html, pageURL string) (string, error) {
	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// chromeSelectors match page furniture that never holds the answer.
const chromeSelectors = "script, style, noscript, svg, nav, aside, header, footer, [role=navigation], [role=banner]"

// pruneChrome drops navigation and other non-content elements from html.
// Unparseable input is returned unchanged.
func pruneChrome(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	removed := doc.Find(chromeSelectors).Remove().Length()
	out, err := doc.Html()
	if err != nil {
		return html
	}
	L_trace("extractor: pruned page chrome", "elements", removed)
	return out
}
