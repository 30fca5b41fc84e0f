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
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// runsAPI defines interfaces of a scenario database.
type runsAPI interface {
	// listRuns lists the runs (model/scenario versions) of the database.
	listRuns(ctx context.Context, defaultOnly bool, includeMetadata bool) ([]Run, error)
	// listVariables lists the variables of the database.
	listVariables(ctx context.Context) ([]variableEntry, error)
	// listRegions lists the regions of the database.
	listRegions(ctx context.Context) ([]regionEntry, error)
	// bulkTimeseries fetches the observations matching the filters.
	bulkTimeseries(ctx context.Context, req *bulkRequest) ([]bulkObservation, error)
}

var _ runsAPI = (*Connection)(nil)

// Run is one version of a model/scenario pair stored in a scenario database.
type Run struct {
	// ID identifies the run in time-series queries.
	ID int64 `json:"run_id"`
	// Model is the name of the integrated assessment model.
	Model string `json:"model"`
	// Scenario is the name of the scenario.
	Scenario string `json:"scenario"`
	// Version is the version number of the model/scenario pair.
	Version int64 `json:"version"`
	// IsDefault reports whether this version is the default among the versions
	// of the same model/scenario pair.
	IsDefault bool `json:"is_default"`

	CreateUser string `json:"cre_user"`
	CreateDate string `json:"cre_date"`
	UpdateUser string `json:"upd_user"`
	UpdateDate string `json:"upd_date"`

	// Metadata holds the indicators attached to the run. Only populated when
	// requested.
	Metadata map[string]json.RawMessage `json:"metadata,omitempty"`
}

type variableEntry struct {
	Variable string `json:"variable"`
	Unit     string `json:"unit"`
}

type regionEntry struct {
	Name      string `json:"name"`
	Hierarchy string `json:"hierarchy"`
}

type bulkRequest struct {
	Filters bulkFilters `json:"filters"`
}

type bulkFilters struct {
	Runs       []int64  `json:"runs"`
	Variables  []string `json:"variables"`
	Regions    []string `json:"regions"`
	Years      []int64  `json:"years"`
	Units      []string `json:"units"`
	Timeslices []string `json:"timeslices"`
	Times      []string `json:"times"`
}

type bulkObservation struct {
	RunID    int64   `json:"runId"`
	Model    string  `json:"model,omitempty"`
	Scenario string  `json:"scenario,omitempty"`
	Variable string  `json:"variable"`
	Region   string  `json:"region"`
	Unit     string  `json:"unit"`
	Year     int64   `json:"year"`
	Value    float64 `json:"value"`
}

func (conn *Connection) endpoint(path string) (*url.URL, error) {
	return url.Parse(strings.TrimSuffix(conn.baseURL, "/") + "/" + path)
}

func (conn *Connection) listRuns(ctx context.Context, defaultOnly bool, includeMetadata bool) ([]Run, error) {
	req, err := conn.endpoint("runs")
	if err != nil {
		return nil, err
	}
	q := req.Query()
	q.Add("getOnlyDefaultRuns", strconv.FormatBool(defaultOnly))
	q.Add("includeMetadata", strconv.FormatBool(includeMetadata))
	req.RawQuery = q.Encode()

	var runs []Run
	if err := conn.getJSON(ctx, req, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (conn *Connection) listVariables(ctx context.Context) ([]variableEntry, error) {
	req, err := conn.endpoint("ts")
	if err != nil {
		return nil, err
	}

	var vars []variableEntry
	if err := conn.getJSON(ctx, req, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func (conn *Connection) listRegions(ctx context.Context) ([]regionEntry, error) {
	req, err := conn.endpoint("nodes")
	if err != nil {
		return nil, err
	}
	q := req.Query()
	q.Add("hierarchy", "*")
	req.RawQuery = q.Encode()

	var regions []regionEntry
	if err := conn.getJSON(ctx, req, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

func (conn *Connection) bulkTimeseries(ctx context.Context, request *bulkRequest) ([]bulkObservation, error) {
	req, err := conn.endpoint("runs/bulk/ts")
	if err != nil {
		return nil, err
	}

	var obs []bulkObservation
	if err := conn.postJSON(ctx, req, request, &obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// newBulkRequest builds a request with every list non-nil, as the server
// rejects null filters.
func newBulkRequest(runs []int64, variables []string, regions []string) *bulkRequest {
	nonNil := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	if runs == nil {
		runs = []int64{}
	}
	return &bulkRequest{
		Filters: bulkFilters{
			Runs:       runs,
			Variables:  nonNil(variables),
			Regions:    nonNil(regions),
			Years:      []int64{},
			Units:      []string{},
			Timeslices: []string{},
			Times:      []string{},
		},
	}
}
