/*
Copyright 2018-2024 Craig Johnston <cjimti@gmail.com>

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

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/txn2/logfwd/cmd/logfwd/export"
	"github.com/txn2/logfwd/cmd/logfwd/listen"
	"github.com/txn2/logfwd/cmd/logfwd/mcp"
	"github.com/txn2/logfwd/cmd/logfwd/version"
)

var globalUsage = `logfwd receives log4j XML events over UDP and shows them live,
grouped into one channel per sending application and machine.`
var Version = "0.0.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logfwd",
		Short: "Receive and browse log4j events sent over UDP.",
		Long:  globalUsage,
	}

	version.Version = Version
	listen.Version = Version
	mcp.Version = Version

	cmd.AddCommand(version.Cmd, listen.Cmd, mcp.Cmd, export.Cmd)

	return cmd
}

func main() {
	cmd := newRootCmd()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
