package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/render"
	"github.com/newthinker/finboard/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	rows     []core.FinancialRow
	rowsErr  error
	board    *core.IndexBoard
	boardErr error

	mu  sync.Mutex
	sel core.FilterSelection
}

func (f *fakeBackend) FinancialData(ctx context.Context, sel core.FilterSelection) ([]core.FinancialRow, error) {
	f.mu.Lock()
	f.sel = sel
	f.mu.Unlock()
	return f.rows, f.rowsErr
}

func (f *fakeBackend) Indices(ctx context.Context) (*core.IndexBoard, error) {
	return f.board, f.boardErr
}

type fakeRecorder struct {
	statuses []string
}

func (f *fakeRecorder) RecordExport(status string) {
	f.statuses = append(f.statuses, status)
}

func ptr(v float64) *float64 { return &v }

func sampleRows() []core.FinancialRow {
	return []core.FinancialRow{
		{Item: "Tiền mặt", Values: map[string]*float64{"2023": ptr(10), "2024": ptr(12.5)}},
		{Item: "Tổng tài sản", Values: map[string]*float64{"2023": ptr(100), "2024": nil}},
	}
}

func newTestExporter(t *testing.T, b Backend, rec Recorder) (*Exporter, *archive.LocalFS) {
	t.Helper()
	store, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	e := New(b, store, rec, nil)
	e.now = func() time.Time { return time.Date(2024, 12, 31, 8, 30, 0, 0, time.UTC) }
	return e, store
}

var vcbYearly = core.FilterSelection{Symbol: "vcb", ReportTypeID: "1", Period: core.PeriodYearly}

func TestExporter_WritesTable(t *testing.T) {
	b := &fakeBackend{rows: sampleRows()}
	rec := &fakeRecorder{}
	e, store := newTestExporter(t, b, rec)

	res, err := e.Export(context.Background(), Request{Selection: vcbYearly})
	require.NoError(t, err)

	assert.Equal(t, "snapshots/VCB/1-yearly-20241231T083000Z.html", res.Path)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "VCB", b.sel.Symbol)
	assert.Equal(t, []string{"success"}, rec.statuses)

	data, err := store.Read(context.Background(), res.Path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<h1>VCB</h1>")
	assert.Contains(t, html, "Tiền mặt")
	assert.Contains(t, html, "12.5")
	assert.NotContains(t, html, "index-board")
}

func TestExporter_AvoidsOverwrite(t *testing.T) {
	e, _ := newTestExporter(t, &fakeBackend{rows: sampleRows()}, nil)

	first, err := e.Export(context.Background(), Request{Selection: vcbYearly})
	require.NoError(t, err)
	second, err := e.Export(context.Background(), Request{Selection: vcbYearly})
	require.NoError(t, err)

	assert.Equal(t, "snapshots/VCB/1-yearly-20241231T083000Z.html", first.Path)
	assert.Equal(t, "snapshots/VCB/1-yearly-20241231T083000Z-2.html", second.Path)
}

func TestExporter_WithIndices(t *testing.T) {
	board := &core.IndexBoard{
		Order: []string{"VNINDEX", "HNXINDEX"},
		Indices: map[string]core.IndexSnapshot{
			"VNINDEX": {
				Name:          "VNINDEX",
				Status:        core.IndexSuccess,
				LatestClose:   ptr(1250.5),
				Change:        ptr(3.2),
				ChangePercent: ptr(0.26),
				MiniChartData: []core.ClosePoint{
					{Time: "2024-12-30", Close: ptr(1247.3)},
					{Time: "2024-12-31", Close: ptr(1250.5)},
				},
			},
			"HNXINDEX": {Name: "HNXINDEX", Status: core.IndexError, Message: "timeout"},
		},
	}
	e, store := newTestExporter(t, &fakeBackend{rows: sampleRows(), board: board}, nil)

	res, err := e.Export(context.Background(), Request{Selection: vcbYearly, WithIndices: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indices)

	data, err := store.Read(context.Background(), res.Path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "VN Index")
	assert.Contains(t, html, "1250.50")
	assert.Contains(t, html, "Lỗi: timeout")
	assert.Contains(t, html, "data:image/png;base64,")
}

func TestExporter_IndexFailureIsNotFatal(t *testing.T) {
	b := &fakeBackend{rows: sampleRows(), boardErr: core.ErrFetchFailed}
	e, store := newTestExporter(t, b, nil)

	res, err := e.Export(context.Background(), Request{Selection: vcbYearly, WithIndices: true})
	require.NoError(t, err)

	data, err := store.Read(context.Background(), res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), render.MsgIndexLoadFailed)
}

func TestExporter_Prunes(t *testing.T) {
	e, store := newTestExporter(t, &fakeBackend{rows: sampleRows()}, nil)
	ctx := context.Background()

	for _, name := range []string{
		"snapshots/VCB/1-yearly-20240101T000000Z.html",
		"snapshots/VCB/1-yearly-20240601T000000Z.html",
		"snapshots/VCB/2-yearly-20240101T000000Z.html",
	} {
		require.NoError(t, store.Write(ctx, name, []byte("old"), contentType))
	}

	res, err := e.Export(ctx, Request{Selection: vcbYearly, Keep: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/VCB/1-yearly-20240101T000000Z.html"}, res.Pruned)

	left, err := store.List(ctx, "snapshots/VCB/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"snapshots/VCB/1-yearly-20240601T000000Z.html",
		"snapshots/VCB/1-yearly-20241231T083000Z.html",
		"snapshots/VCB/2-yearly-20240101T000000Z.html",
	}, left)
}

func TestExporter_PruneKeepsSameSecondExport(t *testing.T) {
	e, store := newTestExporter(t, &fakeBackend{rows: sampleRows()}, nil)
	ctx := context.Background()

	first, err := e.Export(ctx, Request{Selection: vcbYearly})
	require.NoError(t, err)
	second, err := e.Export(ctx, Request{Selection: vcbYearly, Keep: 1})
	require.NoError(t, err)

	assert.Equal(t, "snapshots/VCB/1-yearly-20241231T083000Z-2.html", second.Path)
	assert.Equal(t, []string{first.Path}, second.Pruned)

	exists, err := store.Exists(ctx, second.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExporter_PruneOrdersBySequence(t *testing.T) {
	e, store := newTestExporter(t, &fakeBackend{rows: sampleRows()}, nil)
	ctx := context.Background()

	for _, name := range []string{
		"snapshots/VCB/1-yearly-20240101T000000Z.html",
		"snapshots/VCB/1-yearly-20240101T000000Z-2.html",
		"snapshots/VCB/1-yearly-20240101T000000Z-10.html",
		"snapshots/VCB/1-yearly-notes.html",
	} {
		require.NoError(t, store.Write(ctx, name, []byte("old"), contentType))
	}

	res, err := e.Export(ctx, Request{Selection: vcbYearly, Keep: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"snapshots/VCB/1-yearly-20240101T000000Z.html",
		"snapshots/VCB/1-yearly-20240101T000000Z-2.html",
	}, res.Pruned)

	left, err := store.List(ctx, "snapshots/VCB/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"snapshots/VCB/1-yearly-20240101T000000Z-10.html",
		"snapshots/VCB/1-yearly-20241231T083000Z.html",
		"snapshots/VCB/1-yearly-notes.html",
	}, left)
}

func TestExporter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		sel     core.FilterSelection
		want    error
	}{
		{"missing period", &fakeBackend{}, core.FilterSelection{Symbol: "VCB", ReportTypeID: "1"}, core.ErrFilterMissing},
		{"bad period", &fakeBackend{}, core.FilterSelection{Symbol: "VCB", ReportTypeID: "1", Period: "monthly"}, core.ErrFilterMissing},
		{"path in symbol", &fakeBackend{}, core.FilterSelection{Symbol: "../x", ReportTypeID: "1", Period: core.PeriodYearly}, core.ErrFilterMissing},
		{"backend failure", &fakeBackend{rowsErr: core.WrapError(core.ErrNoData, errors.New("Symbol not found"))}, vcbYearly, core.ErrNoData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			e, store := newTestExporter(t, tc.backend, rec)

			_, err := e.Export(context.Background(), Request{Selection: tc.sel})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, []string{"error"}, rec.statuses)

			left, err := store.List(context.Background(), "")
			require.NoError(t, err)
			assert.Empty(t, left)
		})
	}
}
