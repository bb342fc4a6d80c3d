package eastmoney

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"golang.org/x/net/html"
)

// maxHoldings is how many disclosed positions are kept per fund
const maxHoldings = 10

var (
	contentPattern = regexp.MustCompile(`(?s)content:\s*"(.*?)",\s*arryear`)
	periodPattern  = regexp.MustCompile(`\d{4}年(\d季度|年度|中期)`)
)

// FetchHoldings returns the most recent top-holdings disclosure published in the given year.
// A year without any disclosure yields (nil, nil).
func (c *Client) FetchHoldings(ctx context.Context, id domain.FundID, year int) (*domain.HoldingsSnapshot, error) {
	url := fmt.Sprintf("%s?type=jjcc&code=%s&topline=%d&year=%d&month=&rt=%d",
		c.archiveURL, id, maxHoldings, year, time.Now().UnixMilli())
	body, err := c.session.Get(ctx, url, referer)
	if err != nil {
		return nil, fmt.Errorf("holdings request failed: %w", err)
	}

	snapshot, err := parseHoldings(body)
	if err != nil || snapshot == nil {
		return nil, err
	}
	snapshot.FundID = id
	return snapshot, nil
}

// parseHoldings reads the first (latest) period table out of the apidata HTML fragment
func parseHoldings(body []byte) (*domain.HoldingsSnapshot, error) {
	m := contentPattern.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("holdings content not found in response")
	}
	fragment := strings.NewReplacer(`\"`, `"`, `\/`, `/`).Replace(string(m[1]))
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse holdings html: %w", err)
	}

	var (
		period   string
		snapshot *domain.HoldingsSnapshot
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if snapshot != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h4", "label":
				if p := periodPattern.FindString(textOf(n)); p != "" {
					period = p
				}
			case "table":
				if entries := parseHoldingsTable(n); len(entries) > 0 {
					snapshot = &domain.HoldingsSnapshot{Period: period, Entries: entries}
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if snapshot == nil {
		return nil, nil
	}

	sort.SliceStable(snapshot.Entries, func(i, j int) bool {
		return snapshot.Entries[i].WeightPercent > snapshot.Entries[j].WeightPercent
	})
	if len(snapshot.Entries) > maxHoldings {
		snapshot.Entries = snapshot.Entries[:maxHoldings]
	}
	return snapshot, nil
}

func parseHoldingsTable(table *html.Node) []domain.HoldingEntry {
	codeCol, nameCol, weightCol := 1, 2, -1
	var entries []domain.HoldingEntry

	for _, row := range elements(table, "tr") {
		headers := elements(row, "th")
		if len(headers) > 0 {
			for i, th := range headers {
				text := textOf(th)
				switch {
				case strings.Contains(text, "代码"):
					codeCol = i
				case strings.Contains(text, "名称"):
					nameCol = i
				case strings.Contains(text, "占净值"):
					weightCol = i
				}
			}
			continue
		}

		cells := elements(row, "td")
		if len(cells) <= codeCol || len(cells) <= nameCol {
			continue
		}
		code := strings.TrimSpace(textOf(cells[codeCol]))
		if code == "" {
			continue
		}

		weight, ok := -1.0, false
		if weightCol >= 0 && weightCol < len(cells) {
			weight, ok = parsePercent(textOf(cells[weightCol]))
		} else {
			// No header: the weight is the first percentage after the name
			for _, cell := range cells[nameCol+1:] {
				if weight, ok = parsePercent(textOf(cell)); ok {
					break
				}
			}
		}
		if !ok {
			continue
		}

		entries = append(entries, domain.HoldingEntry{
			InstrumentID:  code,
			Name:          strings.TrimSpace(textOf(cells[nameCol])),
			WeightPercent: weight,
		})
	}
	return entries
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// elements returns descendants with the given tag, not descending into nested matches
func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && child.Data == tag {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
