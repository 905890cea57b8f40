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

package router

// EventKind categorizes router events.
type EventKind string

const (
	// EventGenerate is sent before a URL is generated.
	EventGenerate EventKind = "generate"

	// EventMatch is sent when a URL matches a route.
	EventMatch EventKind = "match"

	// EventMiss is sent when a match or generation finds nothing.
	EventMiss EventKind = "miss"

	// EventTableLoaded is sent after the route table is built.
	EventTableLoaded EventKind = "table_loaded"
)

// Event is a notification about router activity.
//
// Events are optional: the router behaves the same whether they are
// handled or not.
type Event struct {
	Kind       EventKind
	Controller string
	URL        string
	Request    *GenerateRequest
	Fields     map[string]any
}

// EventHandler receives router events. Handlers run synchronously on the
// calling goroutine.
//
// Example:
//
//	handler := router.EventHandlerFunc(func(e router.Event) {
//	    slog.Debug("router event", "kind", e.Kind, "controller", e.Controller)
//	})
//	r := router.MustNew(router.WithEventHandler(handler))
type EventHandler interface {
	OnEvent(Event)
}

// EventHandlerFunc is a function adapter for EventHandler.
type EventHandlerFunc func(Event)

// OnEvent implements EventHandler.
func (f EventHandlerFunc) OnEvent(e Event) {
	f(e)
}
