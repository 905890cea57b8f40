// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command prettyurl inspects and exercises a pretty-URL route table.
//
//	prettyurl routes --config prettyurl.yaml
//	prettyurl match /blog/news/hello-world
//	prettyurl generate ArticleController 1 --tag lang=en
//
// Settings come from the files given with --config, an optional Consul key
// and PRETTYURL_ environment variables, in that order.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalFlags struct {
	configFiles []string
	consulKey   string
	envPrefix   string
	logLevel    string
	logFormat   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		w := colorprofile.NewWriter(os.Stderr, os.Environ())
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		_, _ = fmt.Fprintf(w, "%s %s\n", errStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "prettyurl",
		Short: "Match and generate pretty URLs from a route table",
		Long: `prettyurl loads route declarations from configuration, resolves them
against a database and lets you list the compiled table, match URLs to
controllers and generate URLs for records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&g.configFiles, "config", "c", nil, "configuration file (YAML, JSON or TOML); repeatable, later files win")
	flags.StringVar(&g.consulKey, "consul", "", "Consul key holding configuration; used when CONSUL_HTTP_ADDR is set")
	flags.StringVar(&g.envPrefix, "env-prefix", "PRETTYURL_", "prefix of configuration environment variables")
	flags.StringVar(&g.logLevel, "log-level", "", "log level override: debug, info, warn or error")
	flags.StringVar(&g.logFormat, "log-format", "", "log format override: json, text or console")

	root.AddCommand(
		routesCmd(g),
		matchCmd(g),
		generateCmd(g),
		versionCmd(),
	)

	return root
}
