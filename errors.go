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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrUnknownDatabase is returned by Connect when the name matches no database
	// the account can access.
	ErrUnknownDatabase = errors.New("unknown database")
	// ErrNoBaseURL is returned by Connect when the database entry has no baseUrl.
	ErrNoBaseURL = errors.New("database has no base url")
)

// Error represents an error response from the IIASA API.
type Error struct {
	// Status is the HTTP status code of the response.
	Status int `json:"-"`
	// Message is the message reported by the server.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, http.StatusOK)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	msg := string(data)
	if err != nil {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	var errResp Error
	err = json.Unmarshal(data, &errResp)
	if err != nil || errResp.Message == "" {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	errResp.Status = resp.StatusCode
	return &errResp
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
