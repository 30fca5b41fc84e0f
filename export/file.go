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

// Package export serializes query results to spreadsheet and CSV files.
package export

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
)

// writeFile writes path through a temporary sibling file that is renamed into
// place once write succeeds. An existing file is replaced; on error it is left untouched.
func writeFile(path string, write func(w io.Writer) error) (err error) {
	tmp := path + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		err = errors.Join(err, f.Close())
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
