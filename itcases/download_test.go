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

package itcases

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Renato-Rodrigues/ecemf-mc/download"
)

func TestDownloadMeta(t *testing.T) {
	db := Database(t)
	name := filepath.Join(t.TempDir(), RandomName(t))

	d := download.New(NewConfig())
	require.NoError(t, d.Meta(context.Background(), name, db, true))
	require.FileExists(t, name+".xlsx")
}

func TestDownloadDataNoMatch(t *testing.T) {
	db := Database(t)
	name := filepath.Join(t.TempDir(), RandomName(t))

	res := download.New(NewConfig()).Data(context.Background(), download.DataRequest{
		FileName: name,
		DB:       db,
		Model:    RandomName(t),
		Scenario: RandomName(t),
		Region:   "World",
		SaveCSV:  true,
	})
	require.Equal(t, download.StatusEmpty, res.Status, "%v", res.Err)
	require.Empty(t, res.Files)
}
