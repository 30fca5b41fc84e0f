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

// Command ecemf-mc downloads scenario data from IIASA databases.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
	"github.com/Renato-Rodrigues/ecemf-mc/download"
	"github.com/Renato-Rodrigues/ecemf-mc/internal/logger"
)

// app carries the state shared by the commands.
type app struct {
	v       *viper.Viper
	cfgFile string

	config *Config
	logger *zap.Logger

	// overridable in tests
	loadCredentials func() (*iiasa.Credentials, error)
	dial            download.DialFunc
}

func newApp() *app {
	return &app{
		v:               viper.New(),
		logger:          zap.NewNop(),
		loadCredentials: iiasa.LoadCredentials,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ecemf-mc",
		Short:         "Download scenario data from IIASA databases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./ecemf-mc.yaml)")
	root.PersistentFlags().String("auth-url", iiasa.DefaultAuthURL, "IIASA authentication service")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("auth_url", root.PersistentFlags().Lookup("auth-url"))
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newMetaCmd(a), newDataCmd(a), newDatabasesCmd(a), newConfigCmd(a))
	return root
}

func (a *app) init(*cobra.Command) error {
	config, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	l, err := logger.New(config.Log)
	if err != nil {
		return err
	}
	a.config = config
	a.logger = l
	return nil
}

// downloader builds a Downloader with the configured credentials.
func (a *app) downloader() (*download.Downloader, error) {
	clientConfig, err := a.config.ClientConfig(a.loadCredentials)
	if err != nil {
		return nil, err
	}
	opts := []download.Option{download.WithLogger(a.logger)}
	if a.dial != nil {
		opts = append(opts, download.WithDialer(a.dial))
	}
	return download.New(clientConfig, opts...), nil
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
