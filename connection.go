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
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Connection is an authenticated session to one scenario database.
//
// A Connection is not safe for concurrent use.
type Connection struct {
	config *Config
	http   HTTPClient
	logger *zap.Logger

	token   string
	name    string
	baseURL string
}

// Option configures a Connection.
type Option func(*Connection)

// WithHTTPClient replaces the HTTP client used by the connection.
func WithHTTPClient(c HTTPClient) Option {
	return func(conn *Connection) {
		conn.http = c
	}
}

// WithLogger sets the logger of the connection. The default logger discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(conn *Connection) {
		conn.logger = l
	}
}

func newConnection(config *Config, opts ...Option) *Connection {
	if config == nil {
		config = &Config{}
	}
	conn := &Connection{
		config: config,
		http:   NewHTTPClient(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(conn)
	}
	return conn
}

// authenticate obtains a token, either by login or anonymously.
func (conn *Connection) authenticate(ctx context.Context) error {
	var (
		token string
		err   error
	)
	if creds := conn.config.Credentials; creds != nil {
		token, err = conn.login(ctx, creds)
	} else {
		token, err = conn.anonymous(ctx)
	}
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	conn.token = token
	return nil
}

// Connect opens a connection to the named scenario database.
//
// The name is matched case-insensitively, with or without the "IXSE_" prefix
// used by the application directory.
func Connect(ctx context.Context, config *Config, name string, opts ...Option) (*Connection, error) {
	conn := newConnection(config, opts...)
	if err := conn.authenticate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	apps, err := conn.applications(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("list databases: %w", err)
	}

	idx := slices.IndexFunc(apps, func(app application) bool { return app.matches(name) })
	if idx < 0 {
		conn.Close()
		return nil, fmt.Errorf("%w %q, valid names are %s", ErrUnknownDatabase, name, strings.Join(displayNames(apps), ", "))
	}
	app := apps[idx]
	base := app.baseURL()
	if base == "" {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoBaseURL, app.Name)
	}

	conn.name = app.displayName()
	conn.baseURL = base
	conn.logger = conn.logger.With(zap.String("db", conn.name))
	conn.logger.Info("connected to scenario database", zap.String("base_url", base))
	return conn, nil
}

// ValidConnections lists the names of the databases reachable with the config.
func ValidConnections(ctx context.Context, config *Config, opts ...Option) ([]string, error) {
	conn := newConnection(config, opts...)
	defer conn.Close()

	if err := conn.authenticate(ctx); err != nil {
		return nil, err
	}
	apps, err := conn.applications(ctx)
	if err != nil {
		return nil, err
	}
	return displayNames(apps), nil
}

func displayNames(apps []application) []string {
	names := make([]string, 0, len(apps))
	for i := range apps {
		names = append(names, apps[i].displayName())
	}
	slices.Sort(names)
	return names
}

// Name returns the name of the connected database.
func (conn *Connection) Name() string {
	return conn.name
}

// Close releases the idle network resources of the connection.
//
// You don't typically need to call this as the garbage collector will release
// the resources when the connection is no longer referenced. However, it can be
// useful to call this if you want to release the resources immediately.
func (conn *Connection) Close() {
	if c, ok := conn.http.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// Index lists the runs of the database, ordered by model, scenario and version.
func (conn *Connection) Index(ctx context.Context, defaultOnly bool) ([]Run, error) {
	runs, err := conn.listRuns(ctx, defaultOnly, false)
	if err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}

// Properties returns the properties of every scenario of the database: the
// version, whether it is the default version, and its audit information.
func (conn *Connection) Properties(ctx context.Context, defaultOnly bool) (*Table, error) {
	runs, err := conn.Index(ctx, defaultOnly)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Columns: []string{
			"model", "scenario", "version", "is_default",
			"create_user", "create_date", "update_user", "update_date",
		},
		Rows: make([][]Value, 0, len(runs)),
	}
	for _, r := range runs {
		t.Rows = append(t.Rows, []Value{
			r.Model, r.Scenario, r.Version, r.IsDefault,
			r.CreateUser, r.CreateDate, r.UpdateUser, r.UpdateDate,
		})
	}
	conn.logger.Debug("fetched properties", zap.Int("rows", t.Len()), zap.Bool("default_only", defaultOnly))
	return t, nil
}

// Meta returns the metadata indicators of every scenario of the database, one
// column per indicator.
func (conn *Connection) Meta(ctx context.Context, defaultOnly bool) (*Table, error) {
	runs, err := conn.listRuns(ctx, defaultOnly, true)
	if err != nil {
		return nil, err
	}
	sortRuns(runs)

	var keys []string
	for _, r := range runs {
		for k := range r.Metadata {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)

	t := &Table{
		Columns: append([]string{"model", "scenario", "version"}, keys...),
		Rows:    make([][]Value, 0, len(runs)),
	}
	for _, r := range runs {
		row := []Value{r.Model, r.Scenario, r.Version}
		for _, k := range keys {
			raw, ok := r.Metadata[k]
			if !ok {
				row = append(row, nil)
				continue
			}
			v, err := decodeMetaValue(raw)
			if err != nil {
				return nil, fmt.Errorf("metadata %q of %s/%s: %w", k, r.Model, r.Scenario, err)
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// decodeMetaValue accepts either a plain JSON value or an object holding the
// value under "value". Other objects are kept as they are.
func decodeMetaValue(raw json.RawMessage) (Value, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if inner, ok := wrapped["value"]; ok {
			raw = inner
		}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Variables lists the variable names of the database in lexical order.
func (conn *Connection) Variables(ctx context.Context) ([]string, error) {
	entries, err := conn.listVariables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Variable)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Regions lists the region names of the database in lexical order.
func (conn *Connection) Regions(ctx context.Context) ([]string, error) {
	entries, err := conn.listRegions(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func sortRuns(runs []Run) {
	slices.SortFunc(runs, func(a, b Run) int {
		return cmp.Or(
			cmp.Compare(a.Model, b.Model),
			cmp.Compare(a.Scenario, b.Scenario),
			cmp.Compare(a.Version, b.Version),
		)
	})
}
