package mcpclient

import (
	"context"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// SearchClient wraps the Brave search tool server.
type SearchClient struct {
	*Client
}

func NewSearchClient(command string, args, env []string) *SearchClient {
	return &SearchClient{Client: New("NeezsPilot-MCP-Client", command, args, env)}
}

// Search returns web results for a query. A tool-level error flag degrades
// to an empty result set so callers can proceed without search context.
func (s *SearchClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if count <= 0 {
		count = 5
	}
	res, err := s.Call(ctx, "brave.search", map[string]interface{}{
		"query": query,
		"count": count,
	})
	if err != nil {
		return nil, err
	}
	if res.IsError {
		log.WithField("query", query).Warn("search tool returned an error, treating as no results")
		return []SearchResult{}, nil
	}

	var structured struct {
		Results []SearchResult `json:"results"`
	}
	if decodeStructured(res, &structured) && structured.Results != nil {
		return structured.Results, nil
	}

	return parseSearchText(firstText(res)), nil
}

var resultNumberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// parseSearchText recovers results from the blank-line-delimited
// "N. title\n   description\n   url" text blocks the search server emits
// when structured content is unavailable.
func parseSearchText(text string) []SearchResult {
	results := []SearchResult{}
	if text == "" {
		return results
	}

	flush := func(block []string) {
		if len(block) == 0 {
			return
		}
		r := SearchResult{Title: resultNumberPrefix.ReplaceAllString(strings.TrimSpace(block[0]), "")}
		if len(block) > 1 {
			r.Description = strings.TrimSpace(block[1])
		}
		if len(block) > 2 {
			r.URL = strings.TrimSpace(block[2])
		}
		results = append(results, r)
	}

	var block []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush(block)
			block = nil
			continue
		}
		block = append(block, line)
	}
	flush(block)
	return results
}
