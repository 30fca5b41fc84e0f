/*
 * Copyright 2026 The ecemf-mc Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package iiasa

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Observation is a single time-series data point.
type Observation struct {
	Model    string
	Scenario string
	Region   string
	Variable string
	Unit     string
	Year     int64
	Value    float64
}

func (o *Observation) key() seriesKey {
	return seriesKey{o.Model, o.Scenario, o.Region, o.Variable, o.Unit}
}

type seriesKey struct {
	model, scenario, region, variable, unit string
}

func compareObservations(a, b Observation) int {
	return cmp.Or(
		cmp.Compare(a.Model, b.Model),
		cmp.Compare(a.Scenario, b.Scenario),
		cmp.Compare(a.Region, b.Region),
		cmp.Compare(a.Variable, b.Variable),
		cmp.Compare(a.Unit, b.Unit),
		cmp.Compare(a.Year, b.Year),
	)
}

// IndexColumns are the columns identifying a time series.
var IndexColumns = []string{"model", "scenario", "region", "variable", "unit"}

// LongFormatSchema is the schema of TimeSeriesResult.Data.
var LongFormatSchema = arrow.NewSchema([]arrow.Field{
	{Name: "model", Type: arrow.BinaryTypes.String},
	{Name: "scenario", Type: arrow.BinaryTypes.String},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "variable", Type: arrow.BinaryTypes.String},
	{Name: "unit", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int64},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// TimeSeriesResult stores the result of a time-series query.
type TimeSeriesResult struct {
	observations []Observation
}

// NewTimeSeriesResult creates a result from the given observations, ordered by
// model, scenario, region, variable, unit and year.
func NewTimeSeriesResult(obs []Observation) *TimeSeriesResult {
	sorted := slices.Clone(obs)
	slices.SortStableFunc(sorted, compareObservations)
	return &TimeSeriesResult{observations: sorted}
}

// Len returns the number of observations.
func (r *TimeSeriesResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.observations)
}

// Observations returns the observations in order.
func (r *TimeSeriesResult) Observations() []Observation {
	if r == nil {
		return nil
	}
	return r.observations
}

// Years returns the distinct years of the result in ascending order.
func (r *TimeSeriesResult) Years() []int64 {
	years := make([]int64, 0)
	for _, o := range r.Observations() {
		years = append(years, o.Year)
	}
	slices.Sort(years)
	return slices.Compact(years)
}

// Timeseries returns the wide view of the result: one row per time series,
// the index columns followed by one column per year. Years without an
// observation hold nil.
func (r *TimeSeriesResult) Timeseries() *Table {
	years := r.Years()
	yearIdx := make(map[int64]int, len(years))
	columns := slices.Clone(IndexColumns)
	for i, y := range years {
		yearIdx[y] = len(IndexColumns) + i
		columns = append(columns, strconv.FormatInt(y, 10))
	}

	t := &Table{Columns: columns, Rows: make([][]Value, 0)}
	rowIdx := make(map[seriesKey]int)
	for _, o := range r.Observations() {
		k := o.key()
		i, ok := rowIdx[k]
		if !ok {
			row := make([]Value, len(columns))
			row[0], row[1], row[2], row[3], row[4] = o.Model, o.Scenario, o.Region, o.Variable, o.Unit
			t.Rows = append(t.Rows, row)
			i = len(t.Rows) - 1
			rowIdx[k] = i
		}
		t.Rows[i][yearIdx[o.Year]] = o.Value
	}
	return t
}

// Data returns the long-format view of the result as an Arrow record with
// LongFormatSchema, one row per observation.
//
// The caller must release the record.
func (r *TimeSeriesResult) Data(mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, LongFormatSchema)
	defer b.Release()

	for _, o := range r.Observations() {
		b.Field(0).(*array.StringBuilder).Append(o.Model)
		b.Field(1).(*array.StringBuilder).Append(o.Scenario)
		b.Field(2).(*array.StringBuilder).Append(o.Region)
		b.Field(3).(*array.StringBuilder).Append(o.Variable)
		b.Field(4).(*array.StringBuilder).Append(o.Unit)
		b.Field(5).(*array.Int64Builder).Append(o.Year)
		b.Field(6).(*array.Float64Builder).Append(o.Value)
	}
	return b.NewRecord()
}
