package extraction

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"shiftwatch/internal/canonical"
	"shiftwatch/internal/models"
)

const (
	DefaultTableMarker = "SHiFT Codes"
	contextRadius      = 200
)

var (
	expiredPattern = regexp.MustCompile(`(?i)\bexpired\b`)
	rewardPattern  = regexp.MustCompile(`(?i)\b(\d+\s+golden\s+keys?|golden\s+key)\b`)
	expiryPattern  = regexp.MustCompile(`(?i)\bexpir(?:es|y|ation)?(?:\s+date)?\s*(?:on|:)?\s*((?:[a-z]+\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})|(?:\d{4}-\d{2}-\d{2}))`)
)

// ParseArticle extracts codes from the table captioned with marker. When
// no such table exists the whole document text is scanned and each match
// carries a window of surrounding text for inference.
func ParseArticle(raw []byte, marker string) ([]models.CollectedDraft, error) {
	if marker == "" {
		marker = DefaultTableMarker
	}
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	if table := findMarkedTable(doc, marker); table != nil {
		return draftsFromTable(table), nil
	}
	return draftsFromText(documentText(doc)), nil
}

func findMarkedTable(root *html.Node, marker string) *html.Node {
	want := strings.ToLower(marker)
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Table {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Caption &&
				strings.Contains(strings.ToLower(nodeText(c)), want) {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

func draftsFromTable(table *html.Node) []models.CollectedDraft {
	var drafts []models.CollectedDraft
	walk(table, func(n *html.Node) bool {
		if n != table && n.Type == html.ElementNode && n.DataAtom == atom.Table {
			return false
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr {
			return true
		}
		cells, header := rowCells(n)
		if header || len(cells) < 3 {
			return false
		}
		expires := collapseSpace(nodeText(cells[0]))
		reward := collapseSpace(nodeText(cells[1]))
		for _, code := range canonical.CodeSearchPattern.FindAllString(nodeText(cells[2]), -1) {
			drafts = append(drafts, models.CollectedDraft{
				Code:    code,
				Reward:  reward,
				Expires: expires,
				Notes:   "expires: " + expires + "; reward: " + reward,
			})
		}
		return false
	})
	return drafts
}

func rowCells(tr *html.Node) ([]*html.Node, bool) {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
			return nil, true
		case atom.Td:
			cells = append(cells, c)
		}
	}
	return cells, false
}

func draftsFromText(text string) []models.CollectedDraft {
	var drafts []models.CollectedDraft
	for _, loc := range canonical.CodeSearchPattern.FindAllStringIndex(text, -1) {
		window := contextWindow(text, loc[0], loc[1])
		reward, status, expires := InferFromContext(window)
		drafts = append(drafts, models.CollectedDraft{
			Code:    text[loc[0]:loc[1]],
			Reward:  reward,
			Status:  status,
			Expires: expires,
			Notes:   window,
		})
	}
	return drafts
}

// InferFromContext guesses reward, status and expiry text from prose
// surrounding a code. Empty results mean nothing was found.
func InferFromContext(window string) (reward, status, expires string) {
	if m := rewardPattern.FindStringSubmatch(window); m != nil {
		reward = collapseSpace(m[1])
	}
	if expiredPattern.MatchString(window) {
		status = string(models.StatusExpired)
	}
	if m := expiryPattern.FindStringSubmatch(window); m != nil {
		expires = collapseSpace(m[1])
	}
	return reward, status, expires
}

// contextWindow returns up to contextRadius bytes either side of [start,end),
// widened to rune boundaries.
func contextWindow(text string, start, end int) string {
	from := max(start-contextRadius, 0)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	to := min(end+contextRadius, len(text))
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return collapseSpace(text[from:to])
}

func documentText(root *html.Node) string {
	var sb strings.Builder
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return false
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		return true
	})
	return sb.String()
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
		return true
	})
	return sb.String()
}

// walk visits n and its descendants depth-first; returning false skips children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
