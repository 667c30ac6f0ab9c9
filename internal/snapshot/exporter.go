// Package snapshot renders a static HTML copy of the financial table and the
// market index board and stores it in the archive.
package snapshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/render"
	"github.com/newthinker/finboard/internal/storage/archive"
	"github.com/newthinker/finboard/internal/view"
	"go.uber.org/zap"
)

const (
	contentType = "text/html; charset=utf-8"
	timeLayout  = "20060102T150405Z"

	sparkWidth  = 160
	sparkHeight = 48
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9._-]+$`)

// Backend is the subset of the backend client the exporter reads from.
type Backend interface {
	FinancialData(ctx context.Context, sel core.FilterSelection) ([]core.FinancialRow, error)
	Indices(ctx context.Context) (*core.IndexBoard, error)
}

// Recorder counts exports by outcome.
type Recorder interface {
	RecordExport(status string)
}

// Request selects what to export.
type Request struct {
	Selection core.FilterSelection
	// WithIndices adds the market index board below the table.
	WithIndices bool
	// Keep prunes older snapshots of the same selection; zero keeps all.
	Keep int
}

// Result describes a stored snapshot.
type Result struct {
	Path    string
	Rows    int
	Indices int
	Pruned  []string
}

// Exporter writes snapshots to an archive.
type Exporter struct {
	backend  Backend
	store    archive.Storage
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an exporter. recorder may be nil.
func New(backend Backend, store archive.Storage, recorder Recorder, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		backend:  backend,
		store:    store,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Export fetches the data, renders the document and writes it.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	res, err := e.export(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
	}
	if e.recorder != nil {
		e.recorder.RecordExport(status)
	}
	return res, err
}

func (e *Exporter) export(ctx context.Context, req Request) (*Result, error) {
	sel := req.Selection
	sel.Symbol = strings.ToUpper(strings.TrimSpace(sel.Symbol))
	sel.ReportTypeID = strings.TrimSpace(sel.ReportTypeID)
	if err := view.ValidateFinancial(sel); err != nil {
		return nil, err
	}
	if !sel.Period.Valid() {
		return nil, core.WrapError(core.ErrFilterMissing, fmt.Errorf("invalid period %q", sel.Period))
	}
	if !symbolPattern.MatchString(sel.Symbol) || !symbolPattern.MatchString(sel.ReportTypeID) {
		return nil, core.WrapError(core.ErrFilterMissing, fmt.Errorf("invalid symbol or report type"))
	}

	rows, err := e.backend.FinancialData(ctx, sel)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	doc := document{
		Symbol:      sel.Symbol,
		Report:      sel.ReportTypeID,
		Period:      string(sel.Period),
		GeneratedAt: now.Format("15:04:05 2/1/2006"),
		Table:       render.FinancialTable(rows, sel.Period),
	}

	if req.WithIndices {
		doc.ShowIndices = true
		board, err := e.backend.Indices(ctx)
		if err != nil {
			e.logger.Warn("index board unavailable for snapshot", zap.Error(err))
			doc.IndexMessage = render.MsgIndexLoadFailed
		} else {
			doc.Indices = e.indexRows(render.BuildIndexCards(board))
			if len(doc.Indices) == 0 {
				doc.IndexMessage = render.MsgIndexBoardEmpty
			}
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, doc); err != nil {
		return nil, core.WrapError(core.ErrRenderFailed, err)
	}

	dir := path.Join("snapshots", sel.Symbol)
	prefix := fmt.Sprintf("%s-%s-", sel.ReportTypeID, sel.Period)
	name, err := e.freeName(ctx, dir, prefix+now.Format(timeLayout))
	if err != nil {
		return nil, err
	}
	if err := e.store.Write(ctx, name, buf.Bytes(), contentType); err != nil {
		return nil, err
	}

	res := &Result{Path: name, Rows: len(rows), Indices: len(doc.Indices)}
	if req.Keep > 0 {
		pruned, err := e.prune(ctx, dir, prefix, name, req.Keep)
		if err != nil {
			e.logger.Warn("pruning snapshots failed", zap.String("dir", dir), zap.Error(err))
		}
		res.Pruned = pruned
	}

	e.logger.Info("snapshot exported",
		zap.String("path", name),
		zap.Int("rows", res.Rows),
		zap.Int("indices", res.Indices),
		zap.Int("pruned", len(res.Pruned)),
	)
	return res, nil
}

// freeName returns dir/base.html, or the first dir/base-N.html not yet stored.
func (e *Exporter) freeName(ctx context.Context, dir, base string) (string, error) {
	for n := 1; n < 100; n++ {
		name := path.Join(dir, base+".html")
		if n > 1 {
			name = path.Join(dir, fmt.Sprintf("%s-%d.html", base, n))
		}
		exists, err := e.store.Exists(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
	}
	return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("no free snapshot name for %s", base))
}

// prune deletes the oldest snapshots under dir with the given prefix so that
// at most keep remain. written is never deleted.
func (e *Exporter) prune(ctx context.Context, dir, prefix, written string, keep int) ([]string, error) {
	all, err := e.store.List(ctx, dir+"/")
	if err != nil {
		return nil, err
	}
	var matching []snapshotName
	for _, p := range all {
		if name, ok := parseName(p, prefix); ok {
			matching = append(matching, name)
		}
	}
	if len(matching) <= keep {
		return nil, nil
	}
	sort.Slice(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if a.stamp != b.stamp {
			return a.stamp < b.stamp
		}
		return a.seq < b.seq
	})

	var pruned []string
	for _, name := range matching[:len(matching)-keep] {
		if name.path == written {
			continue
		}
		if err := e.store.Delete(ctx, name.path); err != nil {
			return pruned, err
		}
		pruned = append(pruned, name.path)
	}
	return pruned, nil
}

// snapshotName is a stored snapshot ordered by timestamp, then by the
// sequence suffix freeName adds within one second.
type snapshotName struct {
	path  string
	stamp string
	seq   int
}

// parseName splits "<prefix><stamp>[-<seq>].html" under any directory.
func parseName(p, prefix string) (snapshotName, bool) {
	base := path.Base(p)
	if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, ".html") {
		return snapshotName{}, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(base, prefix), ".html")
	if len(rest) < len(timeLayout) {
		return snapshotName{}, false
	}
	stamp := rest[:len(timeLayout)]
	if _, err := time.Parse(timeLayout, stamp); err != nil {
		return snapshotName{}, false
	}

	seq := 1
	if suffix := rest[len(timeLayout):]; suffix != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(suffix, "-"))
		if !strings.HasPrefix(suffix, "-") || err != nil || n < 2 {
			return snapshotName{}, false
		}
		seq = n
	}
	return snapshotName{path: p, stamp: stamp, seq: seq}, true
}

func (e *Exporter) indexRows(cards []render.IndexCard) []indexRow {
	rows := make([]indexRow, 0, len(cards))
	for _, c := range cards {
		r := indexRow{
			Name:        c.Name,
			Kind:        string(c.Kind),
			Value:       c.Value,
			ChangeText:  c.ChangeText,
			ChangeClass: c.ChangeClass,
			Message:     c.Message,
		}
		if c.HasChart {
			png, err := render.SparklinePNG(c.Points, c.ChartChange, sparkWidth, sparkHeight)
			if err != nil {
				e.logger.Debug("sparkline skipped", zap.String("index", c.Key), zap.Error(err))
			} else {
				r.Sparkline = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
			}
		}
		rows = append(rows, r)
	}
	return rows
}
