package download

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
)

// titleColumns returns a copy of t whose named columns are Title-cased, or
// every column when names is empty. Rows are shared with t.
func titleColumns(t *iiasa.Table, names ...string) *iiasa.Table {
	caser := cases.Title(language.Und)
	columns := slices.Clone(t.Columns)
	for i, c := range columns {
		if len(names) == 0 || slices.Contains(names, c) {
			columns[i] = caser.String(c)
		}
	}
	return &iiasa.Table{Columns: columns, Rows: t.Rows}
}

// dataSheet is the wide view of ts with IAMC headers.
func dataSheet(ts *iiasa.TimeSeriesResult) *iiasa.Table {
	return titleColumns(ts.Timeseries())
}

// metaSheet keeps the rows of meta whose model and scenario occur in ts.
func metaSheet(meta *iiasa.Table, ts *iiasa.TimeSeriesResult) *iiasa.Table {
	if meta == nil {
		meta = &iiasa.Table{Columns: []string{"model", "scenario"}}
	}
	type scenario struct{ model, scenario string }
	queried := make(map[scenario]bool)
	for _, o := range ts.Observations() {
		queried[scenario{o.Model, o.Scenario}] = true
	}

	model := slices.Index(meta.Columns, "model")
	scen := slices.Index(meta.Columns, "scenario")
	filtered := &iiasa.Table{Columns: meta.Columns, Rows: make([][]iiasa.Value, 0)}
	if model < 0 || scen < 0 {
		return titleColumns(filtered, "model", "scenario")
	}
	for _, r := range meta.Rows {
		m, _ := r[model].(string)
		s, _ := r[scen].(string)
		if queried[scenario{m, s}] {
			filtered.Rows = append(filtered.Rows, r)
		}
	}
	return titleColumns(filtered, "model", "scenario")
}
