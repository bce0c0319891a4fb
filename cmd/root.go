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
	"fmt"

	"github.com/Daskott/vitals/colors"
	"github.com/Daskott/vitals/server"
	"github.com/Daskott/vitals/shared"
	"github.com/Daskott/vitals/version"
	"github.com/spf13/cobra"
)

var isDevEnv bool

// startServerFunc runs the server with a validated config
type startServerFunc func(config *shared.ServerConfig, devMode bool)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd(server.Start)
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd(startServer startServerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use: "vitals",
		Short: `vitals is the backend for a personal health reminder app.

It keeps user accounts, medications and emergency contacts behind
token based authentication.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	cmd.AddCommand(createServerCmd(startServer))

	return cmd
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(colors.Red(format), a...)
}
