package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aristath/fundnav/internal/domain"
)

// FetchDirectory downloads the full fund directory.
// The script is `var r = [["000001","HXCZHH","华夏成长混合","混合型-灵活","HUAXIACHENGZHANGHUNHE"],...];`
func (c *Client) FetchDirectory(ctx context.Context) ([]domain.FundInfo, error) {
	body, err := c.session.Get(ctx, c.fundURL+"/js/fundcode_search.js", referer)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	return parseDirectory(body)
}

func parseDirectory(body []byte) ([]domain.FundInfo, error) {
	start := bytes.IndexByte(body, '[')
	end := bytes.LastIndexByte(body, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("directory array not found")
	}

	var rows [][]string
	if err := json.Unmarshal(body[start:end+1], &rows); err != nil {
		return nil, fmt.Errorf("failed to parse directory: %w", err)
	}

	funds := make([]domain.FundInfo, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || row[0] == "" {
			continue
		}
		funds = append(funds, domain.FundInfo{
			Code:   row[0],
			Pinyin: row[1],
			Name:   row[2],
			Type:   row[3],
		})
	}
	return funds, nil
}
