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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/prettyurl/router"
)

// matchResult is the JSON form of a match.
type matchResult struct {
	Controller string            `json:"controller"`
	Pattern    string            `json:"pattern"`
	ID         any               `json:"id,omitempty"`
	Entity     string            `json:"entity,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

func matchCmd(g *globalFlags) *cobra.Command {
	var (
		skipCache bool
		stripBase bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "match URL",
		Short: "Find the route and record a URL resolves to",
		Long: `Match a URL path against the route table and print the controller,
record id and captured parameters of the first route that accepts it.
The URL is expected without the base path unless --strip-base-path is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newStack(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()

			url := args[0]
			if stripBase && s.settings.BasePath != "" {
				url = strings.TrimPrefix(url, strings.TrimRight(s.settings.BasePath, "/"))
			}

			var opts []router.CallOption
			if skipCache {
				opts = append(opts, router.SkipCache())
			}

			m, ok, err := s.router.Match(ctx, url, opts...)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no route matches %q", url)
			}

			res := matchResult{
				Controller: m.Controller,
				Pattern:    m.Route.Pattern(),
				ID:         m.ID,
				Entity:     m.Entity.Table,
				Tags:       m.Tags,
				Params:     m.Params,
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printMatch(cmd.OutOrStdout(), res)

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the result cache")
	cmd.Flags().BoolVar(&stripBase, "strip-base-path", false, "remove the configured base path from URL first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the match as JSON")

	return cmd
}

func printMatch(w io.Writer, res matchResult) {
	id, entity := "-", "-"
	if res.ID != nil {
		id = fmt.Sprint(res.ID)
	}
	if res.Entity != "" {
		entity = res.Entity
	}

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + "  " + valueStyle.Render(value) + "\n")
	}
	line("Controller", res.Controller)
	line("Pattern", res.Pattern)
	line("Entity", entity)
	line("ID", id)
	line("Tags", formatPairs(res.Tags))
	line("Params", formatPairs(res.Params))

	_, _ = io.WriteString(colorWriter(w), b.String())
}
