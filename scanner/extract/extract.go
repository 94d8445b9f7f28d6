// Package extract finds the scripts a rendered page references
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/trackerker/scanner/domain"
	"gitlab.com/trackerker/trackerk"
)

// ScriptSources returns the absolute url of every <script src> in html, in document
// order. Relative sources are resolved against the document's <base href> if it has
// one, otherwise against baseURL. Inline scripts and unparseable sources are skipped.
func ScriptSources(html, baseURL string) []string {
	srcs := make([]string, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return srcs
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = &url.URL{}
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if baseHref, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = baseHref
		}
	}

	doc.Find("script[src]").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}

		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		srcs = append(srcs, base.ResolveReference(ref).String())
	})
	return srcs
}

// ThirdPartyScripts of srcs, those with a registered domain that is not mainDomain
func ThirdPartyScripts(srcs []string, mainDomain string) []trackerk.ScriptReference {
	scripts := make([]trackerk.ScriptReference, 0)
	for _, src := range srcs {
		d := domain.Registered(src)
		if d != "" && d != mainDomain {
			scripts = append(scripts, trackerk.ScriptReference{Src: src, Domain: d})
		}
	}
	return scripts
}
