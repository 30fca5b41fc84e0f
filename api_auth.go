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
	"io"
	"net/url"
	"strings"
)

// authAPI defines interfaces under /legacy of the authentication service.
type authAPI interface {
	// login signs in with the given credentials and returns a bearer token.
	login(ctx context.Context, creds *Credentials) (string, error)
	// anonymous returns a bearer token for public access.
	anonymous(ctx context.Context) (string, error)
	// applications lists the databases reachable with the current token.
	applications(ctx context.Context) ([]application, error)
}

var _ authAPI = (*Connection)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type application struct {
	Name   string              `json:"name"`
	Config []applicationConfig `json:"config"`
}

type applicationConfig struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

const applicationPrefix = "IXSE_"

// displayName is the name users pass to Connect.
func (app *application) displayName() string {
	return strings.ToLower(strings.TrimPrefix(app.Name, applicationPrefix))
}

func (app *application) matches(name string) bool {
	return strings.EqualFold(app.Name, name) ||
		strings.EqualFold(strings.TrimPrefix(app.Name, applicationPrefix), name)
}

func (app *application) baseURL() string {
	for _, c := range app.Config {
		if c.Path == "baseUrl" {
			return c.Value
		}
	}
	return ""
}

func (conn *Connection) login(ctx context.Context, creds *Credentials) (string, error) {
	req, err := url.Parse(conn.config.authURL() + "/legacy/login/")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(&loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return "", err
	}

	resp, err := conn.http.Post(ctx, req, "", body)
	if err != nil {
		return "", err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var token string
	err = json.Unmarshal(data, &token)
	return token, err
}

func (conn *Connection) anonymous(ctx context.Context) (string, error) {
	req, err := url.Parse(conn.config.authURL() + "/legacy/anonym/")
	if err != nil {
		return "", err
	}

	resp, err := conn.http.Get(ctx, req, "")
	if err != nil {
		return "", err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var token string
	err = json.Unmarshal(data, &token)
	return token, err
}

func (conn *Connection) applications(ctx context.Context) ([]application, error) {
	req, err := url.Parse(conn.config.authURL() + "/legacy/applications")
	if err != nil {
		return nil, err
	}

	var apps []application
	if err := conn.getJSON(ctx, req, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// getJSON sends an authorized GET request and decodes the JSON response into out.
func (conn *Connection) getJSON(ctx context.Context, req *url.URL, out any) error {
	resp, err := conn.http.Get(ctx, req, conn.token)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// postJSON sends an authorized POST request with in as JSON body and decodes the response into out.
func (conn *Connection) postJSON(ctx context.Context, req *url.URL, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	resp, err := conn.http.Post(ctx, req, conn.token, body)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
