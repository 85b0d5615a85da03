package blog

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Post stream containers, tried in order.
var streamClasses = []string{
	"u-marginBottom40 js-collectionStream",
	"u-marginBottom40 js-categoryStream",
}

const (
	postClass     = "js-trackPostPresentation"
	externalClass = "is-external"
)

// Link is a post title and its canonical URL.
type Link struct {
	Title string
	URL   string
}

// ParsePostLinks returns the post links listed in a blog index or category page.
// URLs lose their query string. Later links with the same title replace the URL
// of the earlier one.
func ParsePostLinks(doc *html.Node) []Link {
	var stream *html.Node
	for _, cls := range streamClasses {
		if stream = findFirst(doc, func(n *html.Node) bool {
			return n.DataAtom == atom.Div && attr(n, "class") == cls
		}); stream != nil {
			break
		}
	}
	if stream == nil {
		return nil
	}

	var links linkSet
	for _, div := range findAll(stream, func(n *html.Node) bool {
		return n != stream && n.DataAtom == atom.Div && hasClass(n, postClass)
	}) {
		a := findFirst(div, isElement(atom.A))
		if a == nil {
			continue
		}
		href, _, _ := strings.Cut(attr(a, "href"), "?")
		links.put(Link{Title: textContent(a), URL: href})
	}
	return links.items
}

// MenuURLs returns the href of every menu entry not marked external.
func MenuURLs(doc *html.Node) []string {
	var urls []string
	for _, li := range findAll(doc, isElement(atom.Li)) {
		if hasClass(li, externalClass) {
			continue
		}
		a := findFirst(li, isElement(atom.A))
		if a == nil {
			continue
		}
		if href := attr(a, "href"); href != "" {
			urls = append(urls, href)
		}
	}
	return urls
}

// ParseDate returns datePublished from the first head script that mentions it.
// The value is passed through as written by the page.
func ParseDate(doc *html.Node) string {
	head := findFirst(doc, isElement(atom.Head))
	if head == nil {
		return ""
	}
	for _, script := range findAll(head, isElement(atom.Script)) {
		body := textContent(script)
		if !strings.Contains(body, "datePublished") {
			continue
		}
		var meta struct {
			DatePublished string `json:"datePublished"`
		}
		if err := json.Unmarshal([]byte(body), &meta); err != nil {
			return ""
		}
		return meta.DatePublished
	}
	return ""
}

// ArticleText returns the text of the first <article> element.
func ArticleText(doc *html.Node) string {
	article := findFirst(doc, isElement(atom.Article))
	if article == nil {
		return ""
	}
	return textContent(article)
}

// linkSet keeps first-seen order with last-write-wins values.
type linkSet struct {
	items []Link
	index map[string]int
}

func (s *linkSet) put(l Link) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[l.Title]; ok {
		s.items[i].URL = l.URL
		return
	}
	s.index[l.Title] = len(s.items)
	s.items = append(s.items, l)
}

func (s *linkSet) merge(links []Link) {
	for _, l := range links {
		s.put(l)
	}
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == a }
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, cls string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == cls {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
