package registry

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/model"
	"github.com/nao1215/iatifetch/internal/xmlmap"
)

// RefreshCodelists fetches the codelist index page, follows every XML
// link on it, and replaces the stored vocabularies wholesale.
//
// The XML downloads are used rather than the JSON ones: XML is the
// canonical publication and the JSON variant has historically dropped
// attributes such as withdrawal markers.
func (o *Orchestrator) RefreshCodelists(ctx context.Context, sum *model.Summary) error {
	if o.store == nil {
		return ErrNoStore
	}

	index := o.fetcher.FetchOrCache(ctx, fetch.Descriptor{
		URL:      o.indexURL,
		BodyType: fetch.BodyText,
	}, fetch.Options{Refresh: true})
	if !index.OK() {
		return fmt.Errorf("codelist index: %w", index.Reason)
	}

	links := extractXMLLinks(o.indexURL, index.Text())
	if len(links) == 0 {
		return fmt.Errorf("%w: codelist index has no XML links", ErrRegistryResponse)
	}
	o.logger.InfoContext(ctx, "codelist index fetched", "links", len(links))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.searchPar)

	for _, link := range links {
		eg.Go(func() error {
			result := o.fetcher.FetchOrCache(ctx, fetch.Descriptor{
				URL:      link,
				BodyType: fetch.BodyXML,
			}, fetch.Options{})
			if !result.OK() {
				sum.Add(func(c *model.Counts) { c.SoftFailures++ })
				sum.AddFailure(fmt.Sprintf("%s: %v", link, result.Reason))
				return nil
			}

			cl := parseCodelist(result.Text())
			if cl == nil {
				sum.Add(func(c *model.Counts) { c.Rejected++ })
				sum.AddFailure(fmt.Sprintf("%s: not a codelist document", link))
				return nil
			}

			if err := o.store.ReplaceCodelist(ctx, cl); err != nil {
				return fmt.Errorf("store codelist %s: %w", cl.Name, err)
			}
			sum.Add(func(c *model.Counts) {
				c.Codelists++
				c.CodelistItems += len(cl.Items)
			})
			return nil
		})
	}
	return eg.Wait()
}

// extractXMLLinks pulls the href of every anchor ending in .xml out of the
// index page and resolves it against the index URL.
func extractXMLLinks(indexURL, page string) []string {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var links []string
	for node := range root.Descendants() {
		if node.Type != html.ElementNode || node.Data != "a" {
			continue
		}
		for _, attr := range node.Attr {
			if attr.Key != "href" || !strings.HasSuffix(attr.Val, ".xml") {
				continue
			}
			href := attr.Val
			if !strings.Contains(href, "://") {
				href = strings.TrimSuffix(indexURL, "/") + "/" + strings.TrimPrefix(href, "/")
			}
			links = append(links, href)
		}
	}
	return links
}

// parseCodelist turns a fetched codelist document into a model.Codelist.
// Returns nil when the document does not carry a named codelist element.
func parseCodelist(raw string) *model.Codelist {
	doc := xmlmap.ToMap(raw)
	root, ok := doc["codelist"].(map[string]any)
	if !ok {
		return nil
	}
	name, _ := root["@name"].(string)
	if name == "" {
		return nil
	}

	cl := &model.Codelist{Name: name, Element: root}
	for _, item := range xmlmap.Match("codelist-items.codelist-item", root) {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cl.Items = append(cl.Items, model.CodelistItem{
			Code:      elementText(itemMap["code"]),
			Name:      firstNarrative(itemMap["name"]),
			Withdrawn: itemWithdrawn(itemMap),
			Element:   itemMap,
		})
	}
	return cl
}

// elementText extracts scalar content from a normalized element.
func elementText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		s, _ := t["#text"].(string)
		return strings.TrimSpace(s)
	default:
		return ""
	}
}

// firstNarrative returns the first narrative text under an element,
// falling back to the element's own text.
func firstNarrative(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return elementText(v)
	}
	seq, ok := m["narrative"].([]any)
	if !ok || len(seq) == 0 {
		return elementText(v)
	}
	return elementText(seq[0])
}

// itemWithdrawn reads the withdrawal markers a codelist item may carry.
func itemWithdrawn(item map[string]any) bool {
	if status, _ := item["@status"].(string); strings.EqualFold(status, "withdrawn") {
		return true
	}
	withdrawn, _ := item["@withdrawn"].(string)
	return withdrawn == "1" || strings.EqualFold(withdrawn, "true")
}
