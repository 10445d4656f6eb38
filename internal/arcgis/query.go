// Package arcgis queries ArcGIS feature-server layers.
package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"mycity/internal/fetch"
)

// Error is the error object an ArcGIS server embeds in a 200 response.
type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("arcgis error %d: %s (%s)", e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
}

type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

type field struct {
	Name string `json:"name"`
}

type queryResponse struct {
	Fields   []field   `json:"fields"`
	Features []Feature `json:"features"`
	Error    *Error    `json:"error"`
}

type Client struct {
	opts *fetch.Options
}

func NewClient(opts *fetch.Options) *Client {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &Client{opts: opts}
}

// QueryURL builds the query endpoint for a layer.
func QueryURL(layerURL, where string) string {
	if where == "" {
		where = "1=1"
	}
	q := url.Values{}
	q.Set("where", where)
	q.Set("outFields", "*")
	q.Set("f", "json")
	return strings.TrimRight(layerURL, "/") + "/query?" + q.Encode()
}

// Query returns the matching features in server order and the field names
// in the order the layer declares them.
func (c *Client) Query(ctx context.Context, layerURL, where string) ([]Feature, []string, error) {
	res, err := fetch.URL(ctx, QueryURL(layerURL, where), c.opts)
	if err != nil {
		return nil, nil, err
	}
	return parse(res.Body)
}

func parse(raw []byte) ([]Feature, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out queryResponse
	if err := dec.Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("decode arcgis response: %w", err)
	}
	if out.Error != nil {
		return nil, nil, out.Error
	}

	fields := make([]string, 0, len(out.Fields))
	for _, f := range out.Fields {
		fields = append(fields, f.Name)
	}
	return out.Features, fields, nil
}

// FeaturesToRows flattens attributes into rows ordered by fields. Missing
// and null attributes become "".
func FeaturesToRows(features []Feature, fields []string) [][]string {
	rows := make([][]string, 0, len(features))
	for _, f := range features {
		row := make([]string, len(fields))
		for i, name := range fields {
			row[i] = stringify(f.Attributes[name])
		}
		rows = append(rows, row)
	}
	return rows
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
