package genereviews

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// citationSuffix credits the GeneReviews copyright and citation pages.
const citationSuffix = "[GeneReviews:NBK1116, GeneReviews:NBK138602, %s]"

var (
	whitespace = regexp.MustCompile(`\s+`)
	pubmedText = regexp.MustCompile(`^PubMed:\s*(\d+)`)
	pubmedHref = regexp.MustCompile(`/pubmed/(\d+)$`)
)

// Book is what we keep from one GeneReviews book page.
type Book struct {
	NBK string
	// Summary is the collapsed clinical summary text, empty when the page
	// has no summary section.
	Summary string
	// PMIDs are the cited PubMed numbers, sorted and unique.
	PMIDs []string
}

// Definition returns the summary with the citation suffix, or "" when the
// book has no summary.
func (b Book) Definition(bookID string) string {
	if b.Summary == "" {
		return ""
	}
	return strings.TrimSpace(b.Summary + " " + fmt.Sprintf(citationSuffix, bookID))
}

// ParseBook extracts the clinical summary and literature citations from a
// book page.
func ParseBook(nbk string, r io.Reader) (Book, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Book{}, fmt.Errorf("parse %s: %w", nbk, err)
	}
	doc := goquery.NewDocumentFromNode(root)
	book := Book{NBK: nbk}

	summary := doc.Find(`div[id*="Summary.sec0"]`).First()
	if summary.Length() > 0 {
		text := collapse(summary.Find("p").First().Text())
		var items []string
		summary.Find("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			if t := collapse(li.Text()); t != "" {
				items = append(items, t)
			}
		})
		if len(items) > 0 {
			text = strings.TrimSpace(text + " " + strings.Join(items, " "))
		}
		book.Summary = text
	}

	seen := map[string]struct{}{}
	doc.Find(`div[id*="Literature_Cited"]`).First().
		Find("div.bk_ref").
		Find(`a[href*="pubmed"]`).
		Each(func(_ int, a *goquery.Selection) {
			num := pubmedNumber(a)
			if num == "" {
				return
			}
			if _, dup := seen[num]; dup {
				return
			}
			seen[num] = struct{}{}
			book.PMIDs = append(book.PMIDs, num)
		})
	sort.Strings(book.PMIDs)
	return book, nil
}

func pubmedNumber(a *goquery.Selection) string {
	if m := pubmedText.FindStringSubmatch(strings.TrimSpace(a.Text())); m != nil {
		return m[1]
	}
	href, _ := a.Attr("href")
	if m := pubmedHref.FindStringSubmatch(strings.TrimRight(href, "/")); m != nil {
		return m[1]
	}
	return ""
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// bookIndex maps NBK ids to the store names of their pages.
func bookIndex(names []string) map[string]string {
	idx := make(map[string]string, len(names))
	for _, name := range names {
		nbk := strings.TrimSuffix(path.Base(name), path.Ext(name))
		if _, dup := idx[nbk]; !dup {
			idx[nbk] = name
		}
	}
	return idx
}
