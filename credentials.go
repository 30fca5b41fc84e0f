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
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name under which credentials are stored.
	KeyringService = "ecemf-mc"

	keyringUsername = "username"
	keyringPassword = "password"
)

// ErrNoCredentials is returned by LoadCredentials when nothing has been stored.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials are the login of an IIASA scenario explorer account.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SaveCredentials stores the credentials in the system keyring.
//
// This is the one-time setup step; connections never read the keyring
// themselves. Load the credentials with LoadCredentials and pass them in Config.
func SaveCredentials(creds *Credentials) error {
	if creds == nil || creds.Username == "" {
		return errors.New("username must not be empty")
	}
	if err := keyring.Set(KeyringService, keyringUsername, creds.Username); err != nil {
		return fmt.Errorf("save username: %w", err)
	}
	if err := keyring.Set(KeyringService, keyringPassword, creds.Password); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}

// LoadCredentials reads the credentials stored by SaveCredentials.
func LoadCredentials() (*Credentials, error) {
	username, err := keyring.Get(KeyringService, keyringUsername)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load username: %w", err)
	}
	password, err := keyring.Get(KeyringService, keyringPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load password: %w", err)
	}
	return &Credentials{Username: username, Password: password}, nil
}

// DeleteCredentials removes the stored credentials. Deleting credentials that
// were never stored is not an error.
func DeleteCredentials() error {
	for _, key := range []string{keyringUsername, keyringPassword} {
		if err := keyring.Delete(KeyringService, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
