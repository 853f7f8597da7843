package agents

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"auditflow/internal/store"
)

// socialHosts maps known social network hosts to platform names.
var socialHosts = map[string]string{
	"facebook.com":  "facebook",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"linkedin.com":  "linkedin",
	"instagram.com": "instagram",
	"youtube.com":   "youtube",
	"tiktok.com":    "tiktok",
	"github.com":    "github",
}

// ctaVerbs are leading words that mark an anchor or button as a
// call-to-action.
var ctaVerbs = []string{
	"get started", "start free", "sign up", "signup", "try", "book a demo",
	"request a demo", "demo", "buy", "subscribe", "download", "contact",
	"talk to", "join", "learn more", "free trial",
}

// extractPage parses one HTML document into a store.Page. pageURL must be
// absolute; link classification is relative to its host.
func extractPage(pageURL string, body io.Reader) (*store.Page, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	p := &store.Page{
		URL:         pageURL,
		SocialLinks: make(map[string]string),
		PageType:    classifyPageType(base.Path),
	}

	var text strings.Builder
	var visit func(n *html.Node, skipText bool)
	visit = func(n *html.Node, skipText bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				if n.Data == "script" && attr(n, "type") == "application/ld+json" {
					p.HasSchema = true
				}
				return
			case "title":
				p.Title = strings.TrimSpace(nodeText(n))
				return
			case "meta":
				switch {
				case strings.EqualFold(attr(n, "name"), "description"):
					p.MetaDescription = attr(n, "content")
				case attr(n, "property") == "og:image":
					p.OGImage = attr(n, "content")
				}
			case "h1":
				p.H1 = append(p.H1, strings.TrimSpace(nodeText(n)))
			case "h2":
				p.H2 = append(p.H2, strings.TrimSpace(nodeText(n)))
			case "h3":
				p.H3 = append(p.H3, strings.TrimSpace(nodeText(n)))
			case "form":
				p.FormCount++
			case "blockquote":
				if q := strings.TrimSpace(nodeText(n)); q != "" {
					p.Testimonials = append(p.Testimonials, q)
				}
			case "a":
				classifyLink(p, base, n)
			case "button":
				if label := strings.TrimSpace(nodeText(n)); isCTA(label) {
					p.CTAs = append(p.CTAs, store.CTA{Text: label})
				}
			}
		}
		if n.Type == html.TextNode && !skipText {
			if t := strings.TrimSpace(n.Data); t != "" {
				text.WriteString(t)
				text.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, skipText)
		}
	}
	visit(doc, false)

	p.Text = strings.TrimSpace(text.String())
	return p, nil
}

// classifyLink files an anchor under internal, external or social links,
// and records it as a CTA when its label looks like one.
func classifyLink(p *store.Page, base *url.URL, n *html.Node) {
	href := attr(n, "href")
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
		return
	}

	resolved, err := base.Parse(href)
	if err != nil {
		return
	}
	resolved.Fragment = ""

	host := strings.TrimPrefix(strings.ToLower(resolved.Host), "www.")
	if platform, ok := socialHosts[host]; ok {
		p.SocialLinks[platform] = resolved.String()
		return
	}

	label := strings.TrimSpace(nodeText(n))
	if isCTA(label) {
		p.CTAs = append(p.CTAs, store.CTA{Text: label, Href: resolved.String()})
	}

	if sameHost(host, base.Host) {
		p.InternalLinks = append(p.InternalLinks, resolved.String())
	} else {
		p.ExternalLinks = append(p.ExternalLinks, resolved.String())
	}
}

func sameHost(host, baseHost string) bool {
	return host == strings.TrimPrefix(strings.ToLower(baseHost), "www.")
}

// classifyPageType buckets a page by its URL path.
func classifyPageType(path string) string {
	path = strings.ToLower(strings.Trim(path, "/"))
	switch {
	case path == "":
		return "home"
	case strings.Contains(path, "pricing") || strings.Contains(path, "plans"):
		return "pricing"
	case strings.Contains(path, "product") || strings.Contains(path, "features") || strings.Contains(path, "solutions"):
		return "product"
	case strings.Contains(path, "about") || strings.Contains(path, "team") || strings.Contains(path, "company"):
		return "about"
	case strings.Contains(path, "blog") || strings.Contains(path, "news") || strings.Contains(path, "articles"):
		return "blog"
	case strings.Contains(path, "contact"):
		return "contact"
	case strings.Contains(path, "compare") || strings.Contains(path, "alternatives") || strings.Contains(path, "vs-"):
		return "comparison"
	default:
		return "other"
	}
}

func isCTA(label string) bool {
	l := strings.ToLower(label)
	if l == "" || len(l) > 40 {
		return false
	}
	for _, verb := range ctaVerbs {
		if strings.HasPrefix(l, verb) || l == verb {
			return true
		}
	}
	return false
}

// nodeText returns the concatenated text content of a node subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
