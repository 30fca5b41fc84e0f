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
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Wildcard matches any sequence of characters in a filter value.
const Wildcard = "*"

// QueryFilter selects the observations returned by Query.
//
// Each field is a list of alternatives; an empty list or a list holding only
// Wildcard selects everything. Values may contain Wildcard.
type QueryFilter struct {
	Model    []string
	Scenario []string
	Variable []string
	Region   []string

	// AllVersions includes every version of a model/scenario pair instead of
	// only the default one.
	AllVersions bool
}

// Query fetches the time-series observations matching the filter.
//
// Runs are selected by model and scenario from the index; when no run matches,
// the result is empty and no time-series request is sent.
func (conn *Connection) Query(ctx context.Context, filter *QueryFilter) (*TimeSeriesResult, error) {
	if filter == nil {
		filter = &QueryFilter{}
	}

	runs, err := conn.Index(ctx, !filter.AllVersions)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	models, err := compilePatterns(filter.Model)
	if err != nil {
		return nil, err
	}
	scenarios, err := compilePatterns(filter.Scenario)
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]*Run)
	ids := make([]int64, 0)
	for i := range runs {
		r := &runs[i]
		if models.match(r.Model) && scenarios.match(r.Scenario) {
			selected[r.ID] = r
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		conn.logger.Debug("no run matches the filter")
		return &TimeSeriesResult{}, nil
	}

	variables, ok, err := conn.resolve(ctx, filter.Variable, conn.Variables)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	if !ok {
		return &TimeSeriesResult{}, nil
	}
	regions, ok, err := conn.resolve(ctx, filter.Region, conn.Regions)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	if !ok {
		return &TimeSeriesResult{}, nil
	}

	data, err := conn.bulkTimeseries(ctx, newBulkRequest(ids, variables, regions))
	if err != nil {
		return nil, fmt.Errorf("query time series: %w", err)
	}

	obs := make([]Observation, 0, len(data))
	for _, d := range data {
		o := Observation{
			Model:    d.Model,
			Scenario: d.Scenario,
			Region:   d.Region,
			Variable: d.Variable,
			Unit:     d.Unit,
			Year:     d.Year,
			Value:    d.Value,
		}
		if r, ok := selected[d.RunID]; ok {
			o.Model, o.Scenario = r.Model, r.Scenario
		}
		obs = append(obs, o)
	}
	result := NewTimeSeriesResult(obs)
	conn.logger.Debug("queried time series", zap.Int("runs", len(ids)), zap.Int("observations", result.Len()))
	return result, nil
}

// resolve turns filter values into the literal names sent to the server.
//
// A nil slice with ok set means "everything". Wildcard patterns are expanded
// against the names returned by list; ok is false when nothing matches.
func (conn *Connection) resolve(ctx context.Context, values []string, list func(context.Context) ([]string, error)) ([]string, bool, error) {
	if selectsAll(values) {
		return nil, true, nil
	}
	if !hasWildcard(values) {
		return values, true, nil
	}

	patterns, err := compilePatterns(values)
	if err != nil {
		return nil, false, err
	}
	names, err := list(ctx)
	if err != nil {
		return nil, false, err
	}
	var matched []string
	for _, n := range names {
		if patterns.match(n) {
			matched = append(matched, n)
		}
	}
	return matched, len(matched) > 0, nil
}

func selectsAll(values []string) bool {
	for _, v := range values {
		if v != Wildcard {
			return false
		}
	}
	return true
}

func hasWildcard(values []string) bool {
	for _, v := range values {
		if strings.Contains(v, Wildcard) {
			return true
		}
	}
	return false
}

// patternSet matches a name against any of its patterns. An empty set matches everything.
type patternSet []*regexp.Regexp

func compilePatterns(values []string) (patternSet, error) {
	if selectsAll(values) {
		return nil, nil
	}
	set := make(patternSet, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, Wildcard)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", v, err)
		}
		set = append(set, re)
	}
	return set, nil
}

func (s patternSet) match(name string) bool {
	if len(s) == 0 {
		return true
	}
	for _, re := range s {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
