package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fitnesstime/internal/bus"
)

// StreamHandler exposes the invalidation bus to clients over Server-Sent
// Events. The stream carries only event names and scope ids, never entity
// data, so no authorization is applied here; the refetch a client performs
// in response runs through the normal access-controlled reads.
type StreamHandler struct {
	Bus *bus.Bus
}

func NewStreamHandler(eventBus *bus.Bus) *StreamHandler {
	return &StreamHandler{Bus: eventBus}
}

type streamFilter struct {
	name    bus.EventName
	scopeID *int64
}

// parseFilters reads the optional "events" query parameter, a comma-separated
// list of event names with an optional ":id" scope suffix, e.g.
// "event.getById:42,group.getPaginatedGroups". Empty means every event.
func parseFilters(raw string) ([]streamFilter, error) {
	if raw == "" {
		return nil, nil
	}
	var filters []streamFilter
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, idPart, hasScope := strings.Cut(part, ":")
		filter := streamFilter{name: bus.EventName(name)}
		if !bus.Known(filter.name) {
			return nil, fmt.Errorf("unknown event name %q", name)
		}
		if hasScope {
			id, err := strconv.ParseInt(idPart, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid scope id %q", idPart)
			}
			filter.scopeID = &id
		}
		filters = append(filters, filter)
	}
	return filters, nil
}

func matchesAny(ev bus.Event, filters []streamFilter) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if bus.Matches(ev, f.name, f.scopeID) {
			return true
		}
	}
	return false
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query().Get("events"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	watcher := h.Bus.Watch()
	defer watcher.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-watcher.C:
			if !open {
				return
			}
			if !matchesAny(ev, filters) {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
