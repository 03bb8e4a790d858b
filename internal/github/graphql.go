package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/contribgraph/contribgraph-server/internal/domain"
)

const contributionsQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar rawCalendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type rawCalendar struct {
	TotalContributions int `json:"totalContributions"`
	Weeks              []struct {
		ContributionDays []struct {
			Date              string `json:"date"`
			ContributionCount int    `json:"contributionCount"`
		} `json:"contributionDays"`
	} `json:"weeks"`
}

func (c *Client) fetchGraphQL(ctx context.Context, username string, from, to time.Time) (domain.ContributionData, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"login": username,
			"from":  from.Format(time.RFC3339),
			"to":    to.Format(time.RFC3339),
		},
	})
	if err != nil {
		return domain.ContributionData{}, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return domain.ContributionData{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(ctx, req)
	if err != nil {
		return domain.ContributionData{}, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ContributionData{}, fmt.Errorf("parse response: %w", err)
	}

	for _, e := range resp.Errors {
		switch e.Type {
		case "NOT_FOUND":
			return domain.ContributionData{}, ErrUserNotFound
		case "RATE_LIMITED":
			return domain.ContributionData{}, ErrRateLimited
		}
	}
	if resp.Data.User == nil {
		if len(resp.Errors) > 0 {
			return domain.ContributionData{}, fmt.Errorf("graphql: %s", resp.Errors[0].Message)
		}
		return domain.ContributionData{}, ErrUserNotFound
	}

	cal := resp.Data.User.ContributionsCollection.ContributionCalendar
	days := make([]domain.ActivityRecord, 0, len(cal.Weeks)*7)
	for _, w := range cal.Weeks {
		for _, d := range w.ContributionDays {
			day, err := domain.ParseDate(d.Date)
			if err != nil {
				return domain.ContributionData{}, fmt.Errorf("parse day %q: %w", d.Date, err)
			}
			days = append(days, domain.NewActivityRecord(day, d.ContributionCount))
		}
	}

	return domain.ContributionData{
		Total: cal.TotalContributions,
		Days:  days,
	}, nil
}
