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
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rivaas.dev/prettyurl/router"
	"rivaas.dev/prettyurl/router/generator"
)

func generateCmd(g *globalFlags) *cobra.Command {
	var (
		attrs     map[string]string
		tags      map[string]string
		basePath  string
		skipCache bool
	)

	cmd := &cobra.Command{
		Use:   "generate CONTROLLER [ID]",
		Short: "Build the URL of a controller for a record",
		Long: `Generate the URL a controller is reached at. Pass the record's primary
key as ID, or describe it with --attr (relationship fields use their
dotted path, e.g. --attr category.slug=news). Routes without fields
need neither.`,
		Example: `  prettyurl generate ArticleController 42
  prettyurl generate ArticleController --attr slug=hello-world --attr category.slug=news
  prettyurl generate HomeController --tag lang=de`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			el, err := element(args[1:], attrs)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := newStack(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()

			var opts []router.CallOption
			if len(tags) > 0 {
				opts = append(opts, router.Tags(tags))
			}
			if cmd.Flags().Changed("base-path") {
				opts = append(opts, router.BasePath(basePath))
			}
			if skipCache {
				opts = append(opts, router.SkipCache())
			}

			url, ok, err := s.router.Generate(ctx, args[0], el, opts...)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no route of %s generates a URL for %s", args[0], el)
			}

			_, _ = fmt.Fprintln(colorWriter(cmd.OutOrStdout()), urlStyle.Render(url))

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&attrs, "attr", nil, "describe the record by attribute (key=value)")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "only consider routes carrying these tags (key=value)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "override the configured base path")
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the result cache")

	return cmd
}

// element builds the generator element from the optional id argument or
// the attributes. Numeric ids are passed as integers.
func element(ids []string, attrs map[string]string) (generator.Element, error) {
	switch {
	case len(ids) > 0 && len(attrs) > 0:
		return generator.None, errors.New("an ID and --attr are mutually exclusive")
	case len(ids) > 0:
		if n, err := strconv.ParseInt(ids[0], 10, 64); err == nil {
			return generator.ID(n), nil
		}
		return generator.ID(ids[0]), nil
	case len(attrs) > 0:
		m := make(map[string]any, len(attrs))
		for k, v := range attrs {
			m[k] = v
		}
		return generator.Attrs(m), nil
	default:
		return generator.None, nil
	}
}
