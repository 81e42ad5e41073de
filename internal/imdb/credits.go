package imdb

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"marquee/internal/htmldoc"
	"marquee/internal/logging"
	"marquee/internal/webcache"
)

// CompanyCredits partitions the companies on a title's credits page into
// production companies and distributors. Section headers drive the split;
// when the page exposes none, each company link is classified by the
// keywords around it, defaulting to production.
func (e *Enricher) CompanyCredits(ctx context.Context, id string) (production, distributors []string) {
	creditsURL := fmt.Sprintf("%s/title/%s/companycredits/", e.baseURL, id)
	key := webcache.Key("imdb_credits", id)
	content, ok := e.fetcher.Fetch(ctx, creditsURL, key, e.fetchOptions())
	if !ok {
		return nil, nil
	}
	doc, err := htmldoc.Parse(content)
	if err != nil {
		return nil, nil
	}

	production, distributors = creditsBySection(doc)
	if len(production) == 0 && len(distributors) == 0 {
		production, distributors = creditsByLinkContext(doc)
	}

	e.logger.Debug("company credits",
		logging.String("imdb_id", id),
		logging.Int("production_companies", len(production)),
		logging.Int("distributors", len(distributors)))
	return dedupe(production), dedupe(distributors)
}

// creditsBySection walks h3/h4 section headers mentioning production or
// distribution and collects the list entries up to the next header.
func creditsBySection(doc *html.Node) (production, distributors []string) {
	headers := htmldoc.FindAll(doc, func(n *html.Node) bool {
		if n.Data != "h3" && n.Data != "h4" {
			return false
		}
		text := strings.ToLower(htmldoc.Text(n))
		return strings.Contains(text, "production") || strings.Contains(text, "distributor")
	})

	for _, header := range headers {
		var companies []string
		for sib := htmldoc.NextElementSibling(header); sib != nil; sib = htmldoc.NextElementSibling(sib) {
			if sib.Data == "h3" || sib.Data == "h4" {
				break
			}
			switch sib.Data {
			case "ul":
				for _, item := range htmldoc.FindAll(sib, htmldoc.Element("li")) {
					if name := htmldoc.Text(item); name != "" {
						companies = append(companies, name)
					}
				}
			case "p":
				if name := htmldoc.Text(sib); name != "" {
					companies = append(companies, name)
				}
			}
		}
		if strings.Contains(strings.ToLower(htmldoc.Text(header)), "production") {
			production = append(production, companies...)
		} else {
			distributors = append(distributors, companies...)
		}
	}
	return production, distributors
}

func creditsByLinkContext(doc *html.Node) (production, distributors []string) {
	links := htmldoc.FindAll(doc, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(htmldoc.Attr(n, "href"), "/company/")
	})
	for _, link := range links {
		name := htmldoc.Text(link)
		if name == "" {
			continue
		}
		surrounding := ""
		if link.Parent != nil {
			surrounding = strings.ToLower(htmldoc.Text(link.Parent))
		}
		switch {
		case strings.Contains(surrounding, "distribution") || strings.Contains(surrounding, "distributed"):
			distributors = append(distributors, name)
		default:
			production = append(production, name)
		}
	}
	return production, distributors
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
