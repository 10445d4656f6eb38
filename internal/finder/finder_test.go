package finder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"mycity/internal/gmaps"
	"mycity/internal/location"
	"mycity/internal/records"
)

const pollingCSV = "\ufeffX,Y,Location2,Location3,WardsPrec\n" +
	"1,2,Dorchester High School,50 Dunbar Ave,Ward 16 Precinct 1\n" +
	"3,4,Murphy School,1 Worrell St,\n" +
	"5,6,Murphy School Annex,1 Worrell St,Ward 16 Precinct 9\n"

type staticSource struct {
	recs []records.Record
	err  error
}

func (s staticSource) Load(context.Context) (*records.Schema, []records.Record, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return nil, s.recs, nil
}

type distances map[string]gmaps.DrivingInfo

func (d distances) DrivingInfo(_ context.Context, _ string, dests []string) ([]gmaps.DrivingInfo, error) {
	out := make([]gmaps.DrivingInfo, len(dests))
	for i, dst := range dests {
		out[i] = d[dst]
		out[i].Destination = dst
	}
	return out, nil
}

type recordingReporter struct {
	failures []Failure
}

func (r *recordingReporter) ReportFailure(_ context.Context, f Failure) {
	r.failures = append(r.failures, f)
}

func pollingConfig(src Source) Config {
	return Config{
		Source:     src,
		AddressKey: "Location3",
		Speech: MustSpeech("polling", "The closest polling location, {{.Location2}}, is at {{.Location3}}. "+
			"It is {{.DrivingDistanceText}} away. {{.WardsPrec}}"),
		Format: func(fields map[string]string) {
			if fields["WardsPrec"] != "" {
				fields["WardsPrec"] = "Ward: " + fields["WardsPrec"]
			}
		},
		City:  "Boston",
		State: "MA",
	}
}

func TestFind_CSVSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(pollingCSV))
	}))
	defer srv.Close()

	d := distances{
		"50 Dunbar Ave, Boston, MA": {Distance: 3000, DistanceText: "1.9 mi", OK: true},
		"1 Worrell St, Boston, MA":  {Distance: 800, DistanceText: "0.5 mi", OK: true},
	}
	res := location.NewResolver(d, zap.NewNop())

	got, err := New(pollingConfig(CSVSource{URL: srv.URL + "/polling.csv"}), res).Find(context.Background(), "46 Everdean St Boston MA")
	require.NoError(t, err)
	// Later duplicate record wins the address; the clause is formatted.
	assert.Equal(t, "The closest polling location, Murphy School Annex, is at 1 Worrell St, Boston, MA. "+
		"It is 0.5 mi away. Ward: Ward 16 Precinct 9", got)
}

func TestFind_DeduplicatesInOrder(t *testing.T) {
	schema := records.MustSchema("t", "Location2", "Location3", "WardsPrec")
	recs := []records.Record{
		mustNew(t, schema, "a", "1 Main St", ""),
		mustNew(t, schema, "b", "2 Elm St", ""),
		mustNew(t, schema, "c", "1 MAIN ST", ""),
	}

	spy := &spyResolver{}
	_, err := New(pollingConfig(staticSource{recs: recs}), spy).Find(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1 Main St, Boston, MA"}, {"2 Elm St, Boston, MA"}}, spy.features)
	assert.Equal(t, "Location3", spy.featureType)
}

func TestFind_BlankAddressesSkipped(t *testing.T) {
	schema := records.MustSchema("t", "Location2", "Location3", "WardsPrec")
	recs := []records.Record{
		mustNew(t, schema, "Nowhere", "", "Ward 1"),
		mustNew(t, schema, "Murphy School", "1 Worrell St", ""),
		mustNew(t, schema, "Somewhere", "   ", "Ward 2"),
	}

	spy := &spyResolver{}
	_, err := New(pollingConfig(staticSource{recs: recs}), spy).Find(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1 Worrell St, Boston, MA"}}, spy.features)
}

func TestFind_AllBlankAddressesIsNotFound(t *testing.T) {
	schema := records.MustSchema("t", "Location2", "Location3", "WardsPrec")
	recs := []records.Record{mustNew(t, schema, "Nowhere", "", "Ward 1")}

	rep := &recordingReporter{}
	got, err := New(pollingConfig(staticSource{recs: recs}), location.NewResolver(distances{}, nil), WithReporter(rep)).
		Find(context.Background(), "o")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, rep.failures, 1)
}

func TestFind_BlankClauseOmitted(t *testing.T) {
	schema := records.MustSchema("t", "Location2", "Location3", "WardsPrec")
	recs := []records.Record{mustNew(t, schema, "Murphy School", "1 Worrell St", "  ")}
	cfg := pollingConfig(staticSource{recs: recs})
	cfg.Format = nil

	d := distances{"1 Worrell St, Boston, MA": {Distance: 1, DistanceText: "0.1 mi", OK: true}}
	got, err := New(cfg, location.NewResolver(d, nil)).Find(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, "The closest polling location, Murphy School, is at 1 Worrell St, Boston, MA. It is 0.1 mi away.", got)
}

func TestFind_NotFoundIsSilentAndReported(t *testing.T) {
	schema := records.MustSchema("t", "Location2", "Location3", "WardsPrec")
	recs := []records.Record{mustNew(t, schema, "a", "1 Main St", "")}

	rep := &recordingReporter{}
	d := distances{} // nothing routable
	got, err := New(pollingConfig(staticSource{recs: recs}), location.NewResolver(d, nil), WithReporter(rep)).
		Find(context.Background(), "46 Everdean St Boston MA")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.Len(t, rep.failures, 1)
	assert.Equal(t, "Location3", rep.failures[0].FeatureType)
	assert.ErrorIs(t, rep.failures[0].Reason, location.ErrNotFound)
}

func TestFind_EmptyDatasetIsNotFound(t *testing.T) {
	got, err := New(pollingConfig(staticSource{}), location.NewResolver(distances{}, nil)).Find(context.Background(), "o")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_DatasetErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(pollingConfig(staticSource{err: boom}), &spyResolver{}).Find(context.Background(), "o")
	assert.ErrorIs(t, err, boom)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Location2,Location3\nonly-one-field\n"))
	}))
	defer srv.Close()
	_, err = New(pollingConfig(CSVSource{URL: srv.URL}), &spyResolver{}).Find(context.Background(), "o")
	assert.Error(t, err)
}

func TestFind_MissingAddressFieldErrors(t *testing.T) {
	schema := records.MustSchema("t", "Name")
	recs := []records.Record{mustNew(t, schema, "x")}
	_, err := New(pollingConfig(staticSource{recs: recs}), &spyResolver{}).Find(context.Background(), "o")
	assert.Error(t, err)
}

func TestCSVSource_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Address"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"City Hall", "1 City Hall Sq"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	schema, recs, err := CSVSource{URL: srv.URL + "/sites.xlsx"}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Address"}, schema.Fields())
	require.Len(t, recs, 1)
	assert.Equal(t, "1 City Hall Sq", recs[0].Value("Address"))
	assert.Equal(t, "sites", schema.Name())
}

func TestFeatureServerSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SnowParking/FeatureServer/0/query", r.URL.Path)
		_, _ = w.Write([]byte(`{"fields":[{"name":"Name"},{"name":"Address"},{"name":"Fee"}],
			"features":[{"attributes":{"Name":"Lot A","Address":"20 Bradston St","Fee":null}}]}`))
	}))
	defer srv.Close()

	schema, recs, err := FeatureServerSource{URL: srv.URL + "/SnowParking/FeatureServer/0"}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SnowParking", schema.Name())
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]string{"Name": "Lot A", "Address": "20 Bradston St", "Fee": ""}, recs[0].Fields())
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "053b0359485d435abfb525e07e298885_0",
		datasetName("http://bostonopendata-boston.opendata.arcgis.com/datasets/053b0359485d435abfb525e07e298885_0.csv"))
	assert.Equal(t, "SnowParking",
		datasetName("https://services.arcgis.com/sFnw0xNflSi8J0uh/ArcGIS/rest/services/SnowParking/FeatureServer/0"))
	assert.Equal(t, "dataset", datasetName("http://example.com/"))
}

type spyResolver struct {
	featureType string
	features    [][]string
}

func (s *spyResolver) ClosestFeature(_ context.Context, _ string, _ int, featureType, _ string, features [][]string) (*location.Closest, error) {
	s.featureType = featureType
	s.features = features
	return nil, &location.NotFoundError{Reason: errors.New("spy")}
}

func mustNew(t *testing.T, s *records.Schema, values ...string) records.Record {
	t.Helper()
	r, err := s.New(values...)
	require.NoError(t, err)
	return r
}
