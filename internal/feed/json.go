package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
)

// JSONConnector reads an endpoint that returns an array of raw records, or an
// object wrapping one under "items".
type JSONConnector struct {
	client *http.Client
}

func NewJSONConnector(client *http.Client) *JSONConnector {
	return &JSONConnector{client: client}
}

func (j *JSONConnector) Fetch(ctx context.Context, source config.Source) ([]item.Raw, error) {
	body, err := get(ctx, j.client, source.URL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	defer body.Close()

	var payload json.RawMessage
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source.Name, err)
	}

	var raws []item.Raw
	if err := json.Unmarshal(payload, &raws); err == nil {
		return compact(raws), nil
	}
	var wrapped struct {
		Items []item.Raw `json:"items"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding %s: expected an array of records", source.Name)
	}
	return compact(wrapped.Items), nil
}

// compact drops null array entries.
func compact(raws []item.Raw) []item.Raw {
	out := raws[:0]
	for _, r := range raws {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
