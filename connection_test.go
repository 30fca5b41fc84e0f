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

package iiasa_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
)

var aliceCreds = &iiasa.Credentials{Username: testUsername, Password: testPassword}

func connect(t *testing.T, s *fakeServer) *iiasa.Connection {
	t.Helper()
	conn, err := iiasa.Connect(context.Background(), s.config(aliceCreds), "ecemf")
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

func TestConnect(t *testing.T) {
	s := newFakeServer(t)
	ctx := context.Background()

	for _, name := range []string{"ecemf", "ECEMF", "IXSE_ECEMF"} {
		conn, err := iiasa.Connect(ctx, s.config(aliceCreds), name)
		require.NoError(t, err, name)
		require.Equal(t, "ecemf", conn.Name())
		conn.Close()
	}
}

func TestConnectUnknownDatabase(t *testing.T) {
	s := newFakeServer(t)

	// the ecemf database is not public
	_, err := iiasa.Connect(context.Background(), s.config(nil), "ecemf")
	require.ErrorIs(t, err, iiasa.ErrUnknownDatabase)
	snaps.MatchSnapshot(t, err.Error())
}

func TestConnectWithoutBaseURL(t *testing.T) {
	s := newFakeServer(t)

	_, err := iiasa.Connect(context.Background(), s.config(nil), "broken")
	require.ErrorIs(t, err, iiasa.ErrNoBaseURL)
}

func TestConnectBadCredentials(t *testing.T) {
	s := newFakeServer(t)

	_, err := iiasa.Connect(context.Background(), s.config(&iiasa.Credentials{
		Username: testUsername,
		Password: "wrong",
	}), "ecemf")
	require.Error(t, err)

	var apiErr *iiasa.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "invalid credentials", apiErr.Message)
	snaps.MatchSnapshot(t, err.Error())
}

func TestValidConnections(t *testing.T) {
	s := newFakeServer(t)
	ctx := context.Background()

	names, err := iiasa.ValidConnections(ctx, s.config(nil))
	require.NoError(t, err)
	require.Equal(t, []string{"broken", "public"}, names)

	names, err = iiasa.ValidConnections(ctx, s.config(aliceCreds))
	require.NoError(t, err)
	require.Equal(t, []string{"broken", "ecemf", "public"}, names)
}

func TestProperties(t *testing.T) {
	s := newFakeServer(t)
	conn := connect(t, s)
	ctx := context.Background()

	props, err := conn.Properties(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{
		"model", "scenario", "version", "is_default",
		"create_user", "create_date", "update_user", "update_date",
	}, props.Columns)
	require.Equal(t, 3, props.Len())
	require.Equal(t, []iiasa.Value{"MESSAGEix", "REMIND 2.1", "REMIND 2.1"}, props.Column("model"))
	require.Equal(t, []iiasa.Value{int64(1), int64(1), int64(2)}, props.Column("version"))

	props, err = conn.Properties(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, props.Len())
	require.Equal(t, []iiasa.Value{
		"REMIND 2.1", "DIAG-Base", int64(2), true, "bob", "2022-02-01", "", "",
	}, props.Rows[1])
	require.Equal(t, []iiasa.Value{true, true}, props.Column("is_default"))
}

func TestMeta(t *testing.T) {
	s := newFakeServer(t)
	conn := connect(t, s)

	meta, err := conn.Meta(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"model", "scenario", "version", "category", "source", "warming"}, meta.Columns)
	require.Equal(t, [][]iiasa.Value{
		// objects without a "value" key are kept whole
		{"MESSAGEix", "DIAG-C400", int64(1), "C2", map[string]any{"doi": "10.5281/zenodo.1"}, nil},
		{"REMIND 2.1", "DIAG-Base", int64(1), nil, nil, nil},
		{"REMIND 2.1", "DIAG-Base", int64(2), "C1", nil, 1.5},
	}, meta.Rows)
}

func TestVariablesAndRegions(t *testing.T) {
	s := newFakeServer(t)
	conn := connect(t, s)
	ctx := context.Background()

	vars, err := conn.Variables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Emissions|CH4", "Emissions|CO2", "Primary Energy"}, vars)

	regions, err := conn.Regions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"EU27", "World"}, regions)
}

func TestServerUnavailable(t *testing.T) {
	s := newFakeServer(t)
	conn := connect(t, s)
	s.Close()

	_, err := conn.Properties(context.Background(), false)
	require.Error(t, err)
}
