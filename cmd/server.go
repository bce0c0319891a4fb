/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"reflect"
	"strings"

	devconfig "github.com/Daskott/vitals/dev/config"
	"github.com/Daskott/vitals/shared"
	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "VITALS"

var serverConfigFile string

func createServerCmd(startServer startServerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start a vitals server",
		Long: `Start the vitals HTTP server.

Config is read from the file passed with --sconfig, or from the built in
dev config with --dev. Any config key can be overridden with an env var,
e.g. vitals.listener.port -> VITALS_VITALS_LISTENER_PORT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := serverConfig(serverConfigFile, isDevEnv)
			if err != nil {
				return formattedError("%v", err)
			}

			startServer(config, isDevEnv)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config file for the server, not needed with --dev")

	return cmd
}

// serverConfig reads the server config from configFile, or the dev config in devMode
func serverConfig(configFile string, devMode bool) (*shared.ServerConfig, error) {
	config := viper.New()
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv() // read in environment variables that match
	config.SetDefault("vitals.cors.allowedOrigins", []string{"*"})

	if devMode {
		config.SetConfigType("yaml")
		if err := config.ReadConfig(strings.NewReader(devconfig.SERVER_YML)); err != nil {
			return nil, errors.Wrap(err, "error reading dev server config")
		}
		return loadServerConfig(config)
	}

	if configFile == "" {
		return nil, errors.New("must set --sconfig or --dev")
	}

	config.SetConfigFile(configFile)
	if err := config.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "error reading server config file")
	}

	return loadServerConfig(config)
}

func loadServerConfig(config *viper.Viper) (*shared.ServerConfig, error) {
	serverConfig := &shared.ServerConfig{}
	if err := config.Unmarshal(serverConfig); err != nil {
		return nil, errors.Wrap(err, "error decoding server config")
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("mapstructure")
	})

	if err := validate.Struct(serverConfig); err != nil {
		return nil, errors.Wrap(err, "invalid server config")
	}

	return serverConfig, nil
}
