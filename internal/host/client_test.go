package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansync/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&config.HostConfig{BaseURL: server.URL, TimeoutSeconds: 2})
}

func TestVersion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"Presenter","api_version":"v1"}`)
	})

	client := newTestClient(t, mux)
	version, err := client.Version(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Presenter v1", version)
}

func TestVersionUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(&config.HostConfig{BaseURL: server.URL, TimeoutSeconds: 1})

	_, err := client.Version(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestLibrariesTypedShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/libraries", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"uuid":"lib1","name":"Songs"},{"uuid":"lib2","name":"Messages"}]`)
	})

	client := newTestClient(t, mux)
	libs, err := client.Libraries(context.Background())

	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, NamedRef{UUID: "lib1", Name: "Songs"}, libs[0])
}

func TestLibraryItemsNestedIDShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/library/lib1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":{"uuid":"p1","name":"Living Hope"}},
			{"id":{"uuid":"p2","name":"King of Kings"}}
		]}`)
	})

	client := newTestClient(t, mux)
	items, err := client.LibraryItems(context.Background(), "lib1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Living Hope", items[0].Name)
}

func TestLibraryItemsWalkerFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/library/lib1", func(w http.ResponseWriter, r *http.Request) {
		// Unknown wrapping: the walker still finds uuid/name pairs
		fmt.Fprint(w, `{"payload":{"documents":[
			{"uuid":"p9","title":"Way Maker","extra":1}
		]}}`)
	})

	client := newTestClient(t, mux)
	items, err := client.LibraryItems(context.Background(), "lib1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, NamedRef{UUID: "p9", Name: "Way Maker"}, items[0])
}

func TestTimers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/timers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":{"uuid":"t1","name":"Service Timer"},"allows_overrun":true}]`)
	})

	client := newTestClient(t, mux)
	timers, err := client.Timers(context.Background())

	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, TimerDescriptor{UUID: "t1", Name: "Service Timer", AllowsOverrun: true}, timers[0])
}

func TestCreateTimer(t *testing.T) {
	var body map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/timers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"id":{"uuid":"t2","name":"Service Timer"},"allows_overrun":true}`)
	})

	client := newTestClient(t, mux)
	timer, err := client.CreateTimer(context.Background(), "Service Timer", 300)

	require.NoError(t, err)
	assert.Equal(t, "t2", timer.UUID)
	assert.Equal(t, "Service Timer", body["name"])
	countdown := body["countdown"].(map[string]interface{})
	assert.Equal(t, float64(300), countdown["duration"])
}

func TestFindPlaylistWalksTree(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/playlists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":{"uuid":"g1","name":"Archive"},"type":"group","children":[
				{"id":{"uuid":"pl2","name":"Sunday Service"},"type":"playlist"}
			]},
			{"id":{"uuid":"pl3","name":"Rehearsal"},"type":"playlist"}
		]`)
	})

	client := newTestClient(t, mux)
	ref, err := client.FindPlaylist(context.Background(), "sunday service")

	require.NoError(t, err)
	assert.Equal(t, "pl2", ref.UUID)

	_, err = client.FindPlaylist(context.Background(), "Missing")
	assert.Error(t, err)
}

func TestCurrentRefs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/playlist/pl2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":{"uuid":"row1","name":"Pre-Service"},"type":"header"},
			{"id":{"uuid":"row2","name":"Living Hope"},"type":"presentation","presentation_uuid":"p1"}
		]}`)
	})

	client := newTestClient(t, mux)
	refs, err := client.CurrentRefs(context.Background(), "pl2")

	require.NoError(t, err)
	assert.Equal(t, []string{"h:pre service", "p:p1"}, refs)
}

func TestReplacePlaylist(t *testing.T) {
	var body []map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/playlist/pl2", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{}`)
	})

	client := newTestClient(t, mux)
	err := client.ReplacePlaylist(context.Background(), "pl2", []string{"h:pre service", "p:p1"})

	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Equal(t, "header", body[0]["type"])
	assert.Equal(t, "pre service", body[0]["id"].(map[string]interface{})["name"])
	assert.Equal(t, "presentation", body[1]["type"])
	assert.Equal(t, "p1", body[1]["id"].(map[string]interface{})["uuid"])
}

func TestMediaPlaylistItemsGathersKeywords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/media/playlist/m1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":{"uuid":"a1","name":"Dismiss Kids"},
			 "file_path":"/media/dismiss-kids.png",
			 "updated_at":1767225600000,
			 "tags":["kids","dismissal"]}
		]}`)
	})

	client := newTestClient(t, mux)
	items, err := client.MediaPlaylistItems(context.Background(), "m1", "Titles")

	require.NoError(t, err)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "a1", it.UUID)
	assert.Equal(t, "Dismiss Kids", it.Name)
	assert.Equal(t, "Titles", it.PlaylistName)
	assert.Equal(t, "/media/dismiss-kids.png", it.FilePath)
	assert.Equal(t, int64(1767225600000), it.UpdatedAt)
	assert.Contains(t, it.Keywords, "Dismiss Kids")
	assert.Contains(t, it.Keywords, "kids")
	assert.Contains(t, it.Keywords, "dismissal")
}
