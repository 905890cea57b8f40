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

package logging

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"rivaas.dev/prettyurl/router"
)

// Events returns a router event handler that logs every event at debug
// level. Table loads are logged at info level.
func Events(logger *slog.Logger) router.EventHandler {
	return router.EventHandlerFunc(func(e router.Event) {
		level := slog.LevelDebug
		if e.Kind == router.EventTableLoaded {
			level = slog.LevelInfo
		}
		if !logger.Enabled(context.Background(), level) {
			return
		}

		attrs := make([]slog.Attr, 0, 4+len(e.Fields))
		attrs = append(attrs, slog.String("kind", string(e.Kind)))
		if e.Controller != "" {
			attrs = append(attrs, slog.String("controller", e.Controller))
		}
		if e.URL != "" {
			attrs = append(attrs, slog.String("url", e.URL))
		}
		if e.Request != nil {
			attrs = append(attrs, slog.String("element", e.Request.Element.String()))
			if len(e.Request.Tags) > 0 {
				attrs = append(attrs, slog.Any("tags", e.Request.Tags))
			}
		}
		for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
			attrs = append(attrs, slog.Any(k, e.Fields[k]))
		}

		logger.LogAttrs(context.Background(), level, "router event", attrs...)
	})
}
