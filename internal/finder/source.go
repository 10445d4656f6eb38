package finder

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"mycity/internal/arcgis"
	"mycity/internal/fetch"
	"mycity/internal/records"
)

// Source loads a dataset of features.
type Source interface {
	Load(ctx context.Context) (*records.Schema, []records.Record, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CSVSource downloads a CSV (or XLSX) file whose first row is the header.
type CSVSource struct {
	URL   string
	Mode  records.Mode
	Fetch *fetch.Options
}

func (s CSVSource) Load(ctx context.Context) (*records.Schema, []records.Record, error) {
	res, err := fetch.URL(ctx, s.URL, s.Fetch)
	if err != nil {
		return nil, nil, err
	}

	name := datasetName(s.URL)
	if isSpreadsheet(s.URL, res.ContentType) {
		schema, recs, err := records.ReadXLSX(bytes.NewReader(res.Body), "", name)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", s.URL, err)
		}
		return schema, recs, nil
	}

	schema, seq, err := records.ReadCSVWithHeader(bytes.NewReader(res.Body), name, s.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.URL, err)
	}
	recs, err := records.ReadAll(seq)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.URL, err)
	}
	return schema, recs, nil
}

// FeatureServerSource reads every feature of an ArcGIS layer matching Where.
type FeatureServerSource struct {
	URL    string
	Where  string
	Client *arcgis.Client
}

func (s FeatureServerSource) Load(ctx context.Context) (*records.Schema, []records.Record, error) {
	client := s.Client
	if client == nil {
		client = arcgis.NewClient(nil)
	}

	features, fields, err := client.Query(ctx, s.URL, s.Where)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", s.URL, err)
	}

	schema, err := records.NewSchema(datasetName(s.URL), fields)
	if err != nil {
		return nil, nil, fmt.Errorf("schema for %s: %w", s.URL, err)
	}

	rows := arcgis.FeaturesToRows(features, schema.Fields())
	recs := make([]records.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := schema.New(row...)
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, rec)
	}
	return schema, recs, nil
}

func isSpreadsheet(rawURL, contentType string) bool {
	if strings.HasPrefix(contentType, xlsxContentType) {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".xlsx")
}

// datasetName derives a schema name from the last meaningful URL path
// segment, e.g. ".../SnowParking/FeatureServer/0" -> "SnowParking".
func datasetName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "dataset"
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "FeatureServer" || p == "MapServer" || isDigits(p) {
			continue
		}
		return strings.TrimSuffix(p, path.Ext(p))
	}
	return "dataset"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
