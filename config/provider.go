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

package config

import (
	"context"
	"fmt"

	"rivaas.dev/prettyurl/resolver/sqlstore"
	"rivaas.dev/prettyurl/router"
	"rivaas.dev/prettyurl/router/slug"
)

// Provider returns a route provider serving the routes of the last loaded
// settings. Reloading the Config and invalidating the router picks up the
// new routes.
func Provider(c *Config) router.Provider {
	return router.ProviderFunc(func(context.Context) ([]router.Declaration, error) {
		return c.Settings().Routes, nil
	})
}

// RouterOptions translates the settings into router options: base path,
// cache and slug normalization.
func RouterOptions(s Settings) ([]router.Option, error) {
	opts := []router.Option{router.WithBasePath(s.BasePath)}

	if s.Cache.Enabled {
		opts = append(opts, router.WithCache(router.NewLRUCache(s.Cache.Size, s.Cache.TTL)))
	} else {
		opts = append(opts, router.WithoutCache())
	}

	if len(s.Slug.Scripts) > 0 {
		n, err := slug.New(slug.WithScripts(s.Slug.Scripts...))
		if err != nil {
			return nil, NewError("settings", "slug", err)
		}
		opts = append(opts, router.WithNormalizer(n))
	}

	return opts, nil
}

// StoreOptions translates the database, model and relation settings into
// SQL resolver options.
func StoreOptions(s Settings) ([]sqlstore.Option, error) {
	dialect, err := sqlstore.ParseDialect(s.Database.Driver)
	if err != nil {
		return nil, &Error{Source: "settings", Field: "database.driver", Operation: "parse", Err: err}
	}

	opts := []sqlstore.Option{sqlstore.WithDialect(dialect)}
	for model, table := range s.Models {
		opts = append(opts, sqlstore.WithModel(model, table))
	}
	for _, rel := range s.Relations {
		opts = append(opts, sqlstore.WithRelation(rel.Owner, rel.Name, rel.Relation()))
	}

	return opts, nil
}

// DriverName returns the database/sql driver name for the configured
// database.
func DriverName(s Settings) (string, error) {
	switch s.Database.Driver {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s.Database.Driver)
	}
}
