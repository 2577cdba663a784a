package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitnesstime/internal/bus"
)

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters("")
	require.NoError(t, err)
	assert.Nil(t, filters)

	filters, err = parseFilters("event.getById:42, group.getPaginatedGroups")
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, bus.EventGetByID, filters[0].name)
	require.NotNil(t, filters[0].scopeID)
	assert.Equal(t, int64(42), *filters[0].scopeID)
	assert.Equal(t, bus.GroupGetPaginated, filters[1].name)
	assert.Nil(t, filters[1].scopeID)
}

func TestParseFilters_UnknownName(t *testing.T) {
	_, err := parseFilters("event.getEverything")
	assert.Error(t, err)
}

func TestParseFilters_BadScopeID(t *testing.T) {
	_, err := parseFilters("event.getById:abc")
	assert.Error(t, err)
}

func TestMatchesAny(t *testing.T) {
	scoped, err := parseFilters("event.getById:42")
	require.NoError(t, err)

	assert.True(t, matchesAny(bus.Scoped(bus.EventGetByID, 42), scoped))
	assert.False(t, matchesAny(bus.Scoped(bus.EventGetByID, 7), scoped))
	assert.True(t, matchesAny(bus.Wildcard(bus.EventGetByID), scoped))
	assert.False(t, matchesAny(bus.Wildcard(bus.GroupGetByID), scoped))

	// no filters means everything passes
	assert.True(t, matchesAny(bus.Wildcard(bus.ChatGetForGroup), nil))
}

func TestStream_RejectsUnknownFilter(t *testing.T) {
	h := NewStreamHandler(bus.NewBus())

	req := httptest.NewRequest(http.MethodGet, "/api/stream?events=event.getNope", nil)
	rec := httptest.NewRecorder()
	h.Stream(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStream_DeliversPublishedEvents(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	h := NewStreamHandler(eventBus)

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?events=event.getById:42")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The watcher registers after the response headers arrive; keep
	// publishing until the frame shows up on the wire.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(10 * time.Millisecond):
				eventBus.Publish(bus.Scoped(bus.EventGetByID, 42))
			}
		}
	}()

	reader := bufio.NewReader(resp.Body)
	var line string
	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}

	payload := strings.TrimPrefix(strings.TrimSpace(line), "data: ")
	assert.Contains(t, payload, `"eventName"`)

	var ev bus.Event
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))
	assert.Equal(t, bus.EventGetByID, ev.Name)
	require.NotNil(t, ev.ScopeID)
	assert.Equal(t, int64(42), *ev.ScopeID)
}
