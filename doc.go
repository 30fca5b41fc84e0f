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

/*
Package iiasa provides a lightweight client for the IIASA scenario explorer databases.

# Credentials

Store your login once; it is kept in the system keyring:

	err := iiasa.SaveCredentials(&iiasa.Credentials{Username: "login", Password: "password"})

Load it explicitly when building a Config. Without credentials the connection is anonymous:

	creds, err := iiasa.LoadCredentials()
	if err != nil && !errors.Is(err, iiasa.ErrNoCredentials) {
		return err
	}
	config := &iiasa.Config{Credentials: creds}

# Connect

Use Connect to open a session to a named database:

	conn, err := iiasa.Connect(ctx, config, "ecemf")
	if err != nil {
		return err
	}
	defer conn.Close()

# Query Data

Properties lists the scenarios of the database; Query fetches time series:

	props, err := conn.Properties(ctx, true)

	result, err := conn.Query(ctx, &iiasa.QueryFilter{
		Model:    []string{"REMIND 2.1"},
		Scenario: []string{"DIAG-C400-lin"},
		Variable: []string{iiasa.Wildcard},
		Region:   []string{"EU27"},
	})
	wide := result.Timeseries()
	long := result.Data(memory.DefaultAllocator)
	defer long.Release()

The download sub-package writes these results to spreadsheet and CSV files.
*/
package iiasa
