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
	"fmt"

	"github.com/spf13/cobra"

	"rivaas.dev/prettyurl/router/compiler"
)

func routesCmd(g *globalFlags) *cobra.Command {
	var (
		controller string
		tags       map[string]string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the compiled route table",
		Long: `List every route in the order the router tries them. With --controller
only the routes of that controller are shown; --tag narrows to routes
carrying the given tags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newStack(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()

			var routes []*compiler.Route
			if controller != "" {
				routes, err = s.router.RoutesForController(ctx, controller, tags)
			} else {
				routes, err = s.router.Routes(ctx)
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(routes))
			for _, r := range routes {
				if controller == "" && !r.MatchesTags(tags) {
					continue
				}
				rows = append(rows, routeRow(r))
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(colorWriter(out), dimStyle.Render("no routes"))
				return nil
			}
			renderTable(out, []string{"Pattern", "Controller", "Entity", "Tags", "Regex"}, rows)

			return nil
		},
	}

	cmd.Flags().StringVar(&controller, "controller", "", "only list routes of this controller")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "only list routes carrying these tags (key=value)")

	return cmd
}

func routeRow(r *compiler.Route) []string {
	entity := "-"
	if e, ok := r.Entity(); ok {
		entity = e.String()
	}

	return []string{
		r.Pattern(),
		r.Controller(),
		entity,
		formatPairs(r.Tags()),
		r.Regex().String(),
	}
}
