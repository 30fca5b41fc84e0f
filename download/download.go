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

// Package download exports the content of an IIASA scenario database to files.
//
// Meta writes the scenario properties of a database to a spreadsheet. Data
// writes the time series and meta indicators of one model/scenario/region
// selection to a spreadsheet and, optionally, a long-format CSV file.
package download

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
	"github.com/Renato-Rodrigues/ecemf-mc/export"
)

const (
	// PropertiesSheet is the sheet name of the spreadsheet written by Meta.
	PropertiesSheet = "properties"
	// DataSheet is the sheet of the Data spreadsheet holding the time series.
	DataSheet = "data"
	// MetaSheet is the sheet of the Data spreadsheet holding the meta
	// indicators of the queried scenarios.
	MetaSheet = "meta"
)

// Session is a connection to one scenario database.
type Session interface {
	// Properties returns the scenario properties table.
	Properties(ctx context.Context, defaultOnly bool) (*iiasa.Table, error)
	// Meta returns the meta indicators table.
	Meta(ctx context.Context, defaultOnly bool) (*iiasa.Table, error)
	// Query fetches the time series matching the filter.
	Query(ctx context.Context, filter *iiasa.QueryFilter) (*iiasa.TimeSeriesResult, error)
}

var _ Session = (*iiasa.Connection)(nil)

// DialFunc opens a session to the named database.
type DialFunc func(ctx context.Context, db string) (Session, error)

// Downloader runs downloads. Each download opens its own session.
type Downloader struct {
	dial   DialFunc
	logger *zap.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithDialer replaces the way sessions are opened.
func WithDialer(dial DialFunc) Option {
	return func(d *Downloader) {
		d.dial = dial
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Downloader) {
		d.logger = l
	}
}

// New creates a Downloader that connects with config.
func New(config *iiasa.Config, opts ...Option) *Downloader {
	d := &Downloader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.dial == nil {
		logger := d.logger
		d.dial = func(ctx context.Context, db string) (Session, error) {
			return iiasa.Connect(ctx, config, db, iiasa.WithLogger(logger))
		}
	}
	return d
}

// Meta writes the scenario properties of database db to <fileName>.xlsx.
//
// The file is written even if the table is empty. Any failure to connect,
// query or write is returned.
func (d *Downloader) Meta(ctx context.Context, fileName string, db string, defaultOnly bool) error {
	if fileName == "" {
		return errors.New("file name must not be empty")
	}

	s, err := d.dial(ctx, db)
	if err != nil {
		return err
	}
	defer closeSession(s)

	props, err := s.Properties(ctx, defaultOnly)
	if err != nil {
		return err
	}

	path := fileName + ".xlsx"
	if err := export.WriteExcel(path, PropertiesSheet, props); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	d.logger.Info("wrote scenario properties",
		zap.String("db", db), zap.String("file", path), zap.Int("rows", props.Len()))
	return nil
}

func closeSession(s Session) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}
