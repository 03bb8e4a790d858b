package github

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/contribgraph/contribgraph-server/internal/domain"
)

const dayClass = "ContributionCalendar-day"

var (
	countPattern = regexp.MustCompile(`(\d[\d,]*) contribution`)
	totalPattern = regexp.MustCompile(`[\d,]+`)
)

func (c *Client) fetchScrape(ctx context.Context, username string, from, to time.Time, explicitYear bool) (domain.ContributionData, error) {
	u, err := url.Parse(c.webURL)
	if err != nil {
		return domain.ContributionData{}, fmt.Errorf("parse web url: %w", err)
	}
	u = u.JoinPath("users", username, "contributions")
	if explicitYear {
		q := url.Values{}
		q.Set("from", domain.FormatDate(from))
		q.Set("to", domain.FormatDate(to))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ContributionData{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	body, err := c.do(ctx, req)
	if err != nil {
		return domain.ContributionData{}, err
	}

	return parseContributionsPage(body)
}

// parseContributionsPage extracts day cells from the contributions fragment.
// The count comes from a nested screen-reader span or from the tool-tip that
// references the cell by id.
func parseContributionsPage(page []byte) (domain.ContributionData, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return domain.ContributionData{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		cells    []*html.Node
		tooltips = make(map[string]string)
		heading  string
	)
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case hasClass(n, dayClass) && attr(n, "data-date") != "":
			cells = append(cells, n)
		case n.Data == "tool-tip" && attr(n, "for") != "":
			tooltips[attr(n, "for")] = textContent(n)
		case n.Data == "h2" && heading == "" && insideClass(n, "js-yearly-contributions"):
			heading = textContent(n)
		}
	})

	days := make([]domain.ActivityRecord, 0, len(cells))
	for _, cell := range cells {
		date := attr(cell, "data-date")
		if _, err := domain.ParseDate(date); err != nil {
			continue
		}

		label := srOnlyText(cell)
		if label == "" {
			label = tooltips[attr(cell, "id")]
		}

		level, _ := strconv.Atoi(attr(cell, "data-level"))
		days = append(days, domain.ActivityRecord{
			Date:  date,
			Count: parseCount(label),
			Level: domain.ClampLevel(level % (domain.MaxLevel + 1)),
		})
	}

	if len(days) == 0 {
		return domain.ContributionData{}, ErrNoData
	}

	total, ok := parseTotal(heading)
	if !ok {
		total = domain.SumCounts(days)
	}

	return domain.ContributionData{Total: total, Days: days}, nil
}

func parseCount(label string) int {
	m := countPattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func parseTotal(heading string) (int, bool) {
	m := totalPattern.FindString(heading)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func insideClass(n *html.Node, class string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(p, class) {
			return true
		}
	}
	return false
}

func srOnlyText(cell *html.Node) string {
	var out string
	walk(cell, func(n *html.Node) {
		if out == "" && n.Type == html.ElementNode && hasClass(n, "sr-only") {
			out = textContent(n)
		}
	})
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
