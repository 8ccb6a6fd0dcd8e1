// Package notify drains the post-commit event list produced by the core
// operations. Delivery is fire-and-forget: a sink failure is logged and
// never influences the already-committed state change.
package notify

import (
	"encoding/json"
	"log"

	"uat-portal-api/internal/realtime"
	"uat-portal-api/internal/service"
)

// Sink delivers one committed-mutation event to an external channel.
type Sink interface {
	Deliver(evt service.Event) error
}

// HubSink pushes events to the websocket hub, on the country channel and
// the acting user's channel.
type HubSink struct {
	hub *realtime.Hub
}

// NewHubSink builds a HubSink over hub.
func NewHubSink(hub *realtime.Hub) *HubSink {
	return &HubSink{hub: hub}
}

// Deliver implements Sink.
func (s *HubSink) Deliver(evt service.Event) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if evt.Country != "" {
		s.hub.Broadcast(realtime.CountryChannel(evt.Country), raw)
	}
	if evt.ActorID != "" {
		s.hub.Broadcast(realtime.UserChannel(evt.ActorID), raw)
	}
	return nil
}

// Dispatcher fans events out to its sinks.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher builds a Dispatcher; nil sinks are dropped.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

var dispatcher *Dispatcher

// Init installs the process-wide dispatcher; call once at startup.
func Init(d *Dispatcher) {
	dispatcher = d
}

// Dispatch delivers events asynchronously through the installed dispatcher.
// Safe to call when Init was never run (tests): it is then a no-op.
func Dispatch(events []service.Event) {
	if dispatcher == nil || len(events) == 0 {
		return
	}
	go dispatcher.run(events)
}

func (d *Dispatcher) run(events []service.Event) {
	for _, evt := range events {
		for _, s := range d.sinks {
			if err := s.Deliver(evt); err != nil {
				log.Printf("notify: %T failed for %s on task %s: %v", s, evt.Type, evt.TaskID, err)
			}
		}
	}
}
