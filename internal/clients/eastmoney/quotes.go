package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aristath/fundnav/internal/domain"
)

// FetchQuotes issues one ulist request for the given instruments.
// Result keys are the ids as requested. Instruments unknown upstream, or quoted "-"
// (suspended, no print yet), are absent.
func (c *Client) FetchQuotes(ctx context.Context, ids []string) (map[string]domain.Quote, error) {
	quotes := make(map[string]domain.Quote, len(ids))
	if len(ids) == 0 {
		return quotes, nil
	}

	bySecID := make(map[string]string, len(ids))
	secids := make([]string, 0, len(ids))
	for _, id := range ids {
		sid := SecID(id)
		bySecID[sid] = id
		secids = append(secids, sid)
	}

	q := url.Values{}
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fields", "f2,f3,f12,f13,f14")
	q.Set("secids", strings.Join(secids, ","))

	body, err := c.session.Get(ctx, c.quoteURL+"?"+q.Encode(), referer)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	return parseQuotes(body, bySecID)
}

func parseQuotes(body []byte, bySecID map[string]string) (map[string]domain.Quote, error) {
	quotes := make(map[string]domain.Quote)

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	// "data": null when none of the instruments is known
	if doc["data"] == nil {
		return quotes, nil
	}

	raw, err := jsonpath.Get("$.data.diff[*]", doc)
	if err != nil {
		return quotes, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return quotes, nil
	}

	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		code := fmt.Sprint(item["f12"])
		change, ok := item["f3"].(float64)
		if !ok || code == "" {
			continue
		}

		id := code
		if market, ok := item["f13"].(float64); ok {
			if requested, ok := bySecID[fmt.Sprintf("%d.%s", int(market), code)]; ok {
				id = requested
			}
		}

		price, _ := item["f2"].(float64)
		name, _ := item["f14"].(string)
		quotes[id] = domain.Quote{
			InstrumentID:  id,
			Name:          name,
			Price:         price,
			ChangePercent: change,
		}
	}

	return quotes, nil
}
