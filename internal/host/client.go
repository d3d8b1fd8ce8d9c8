package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plansync/internal/config"
	"plansync/internal/models"
	"plansync/internal/normalize"
	"plansync/internal/playlist"
)

// NamedRef is a host entity addressed by uuid with a display name
type NamedRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// TimerDescriptor identifies a countdown timer on the host
type TimerDescriptor struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	AllowsOverrun bool   `json:"allows_overrun"`
}

// PlaylistEntry is one row of a host playlist
type PlaylistEntry struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	IsHeader bool   `json:"is_header"`
}

// Client talks to the presentation host's local control API
type Client struct {
	cfg        *config.HostConfig
	httpClient *http.Client
	typed      refParser
	fallback   refParser
}

// NewClient builds a host client. Every call carries the configured
// single-digit-second timeout; a slow host reads as failed, never blocked.
func NewClient(cfg *config.HostConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		typed:      typedParser{},
		fallback:   walkerParser{},
	}
}

// Version probes the host API; success doubles as the readiness check
func (c *Client) Version(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/version")
	if err != nil {
		return "", err
	}
	var v struct {
		Name       string `json:"name"`
		APIVersion string `json:"api_version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("decoding version: %w", err)
	}
	if v.APIVersion == "" {
		return v.Name, nil
	}
	return v.Name + " " + v.APIVersion, nil
}

// Libraries lists the host's presentation libraries
func (c *Client) Libraries(ctx context.Context) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/libraries")
	if err != nil {
		return nil, err
	}
	return c.parseList(data), nil
}

// LibraryItems lists the presentations of one library
func (c *Client) LibraryItems(ctx context.Context, libraryUUID string) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/library/"+libraryUUID)
	if err != nil {
		return nil, err
	}

	var resp libraryResponse
	if err := json.Unmarshal(data, &resp); err == nil && len(resp.Items) > 0 {
		refs := make([]NamedRef, 0, len(resp.Items))
		for _, it := range resp.Items {
			if it.ID.UUID != "" {
				refs = append(refs, NamedRef{UUID: it.ID.UUID, Name: it.ID.Name})
			}
		}
		return refs, nil
	}
	return c.fallback.parseRefs(data), nil
}

// Timers lists countdown timers
func (c *Client) Timers(ctx context.Context) ([]TimerDescriptor, error) {
	data, err := c.get(ctx, "/v1/timers")
	if err != nil {
		return nil, err
	}

	var records []timerRecord
	if err := json.Unmarshal(data, &records); err == nil && len(records) > 0 {
		out := make([]TimerDescriptor, 0, len(records))
		for _, r := range records {
			if r.ID.UUID == "" {
				continue
			}
			out = append(out, TimerDescriptor{UUID: r.ID.UUID, Name: r.ID.Name, AllowsOverrun: r.AllowsOverrun})
		}
		return out, nil
	}

	var out []TimerDescriptor
	for _, ref := range c.fallback.parseRefs(data) {
		out = append(out, TimerDescriptor{UUID: ref.UUID, Name: ref.Name})
	}
	return out, nil
}

// CreateTimer makes a countdown timer with the given duration
func (c *Client) CreateTimer(ctx context.Context, name string, seconds int) (*TimerDescriptor, error) {
	body := map[string]interface{}{
		"name":           name,
		"allows_overrun": true,
		"countdown": map[string]interface{}{
			"duration": seconds,
		},
	}
	data, err := c.send(ctx, http.MethodPost, "/v1/timers", body)
	if err != nil {
		return nil, err
	}

	var record timerRecord
	if err := json.Unmarshal(data, &record); err == nil && record.ID.UUID != "" {
		return &TimerDescriptor{UUID: record.ID.UUID, Name: record.ID.Name, AllowsOverrun: record.AllowsOverrun}, nil
	}
	if refs := c.fallback.parseRefs(data); len(refs) > 0 {
		return &TimerDescriptor{UUID: refs[0].UUID, Name: refs[0].Name, AllowsOverrun: true}, nil
	}
	return nil, fmt.Errorf("create timer %q: unrecognized response", name)
}

// StageLayouts lists stage display layouts
func (c *Client) StageLayouts(ctx context.Context) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/stage/layouts")
	if err != nil {
		return nil, err
	}
	return c.parseList(data), nil
}

// StageScreens lists stage screens for layout assignments
func (c *Client) StageScreens(ctx context.Context) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/stage/screens")
	if err != nil {
		return nil, err
	}
	return c.parseList(data), nil
}

// Props lists props; the engine looks up the named clear prop here
func (c *Client) Props(ctx context.Context) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/props")
	if err != nil {
		return nil, err
	}
	return c.parseList(data), nil
}

// FindPlaylist resolves a playlist by name anywhere in the playlist tree
func (c *Client) FindPlaylist(ctx context.Context, name string) (*NamedRef, error) {
	data, err := c.get(ctx, "/v1/playlists")
	if err != nil {
		return nil, err
	}

	var nodes []playlistNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decoding playlists: %w", err)
	}
	if ref := findPlaylistNode(nodes, normalize.Title(name)); ref != nil {
		return ref, nil
	}
	return nil, fmt.Errorf("playlist %q not found", name)
}

// PlaylistEntries reads the current rows of a playlist
func (c *Client) PlaylistEntries(ctx context.Context, playlistUUID string) ([]PlaylistEntry, error) {
	data, err := c.get(ctx, "/v1/playlist/"+playlistUUID)
	if err != nil {
		return nil, err
	}

	var resp playlistItemsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding playlist: %w", err)
	}
	entries := make([]PlaylistEntry, 0, len(resp.Items))
	for _, it := range resp.Items {
		entry := PlaylistEntry{
			UUID:     it.ID.UUID,
			Name:     it.ID.Name,
			IsHeader: it.Type == "header",
		}
		if it.PresentationUUID != "" {
			entry.UUID = it.PresentationUUID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CurrentRefs reads a playlist as typed references for diffing
func (c *Client) CurrentRefs(ctx context.Context, playlistUUID string) ([]string, error) {
	entries, err := c.PlaylistEntries(ctx, playlistUUID)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsHeader {
			refs = append(refs, playlist.HeaderRef(e.Name))
		} else {
			refs = append(refs, playlist.PresentationRef(e.UUID))
		}
	}
	return refs, nil
}

// ReplacePlaylist swaps the playlist's full contents for the given typed
// reference sequence. The host applies the write atomically.
func (c *Client) ReplacePlaylist(ctx context.Context, playlistUUID string, refs []string) error {
	items := make([]playlistWriteItem, 0, len(refs))
	for _, ref := range refs {
		if playlist.IsHeaderRef(ref) {
			items = append(items, playlistWriteItem{
				Type: "header",
				ID:   idPayload{Name: playlist.RefName(ref)},
			})
			continue
		}
		items = append(items, playlistWriteItem{
			Type: "presentation",
			ID:   idPayload{UUID: playlist.RefName(ref)},
		})
	}
	_, err := c.send(ctx, http.MethodPut, "/v1/playlist/"+playlistUUID, items)
	return err
}

// MediaPlaylists lists media playlists
func (c *Client) MediaPlaylists(ctx context.Context) ([]NamedRef, error) {
	data, err := c.get(ctx, "/v1/media/playlists")
	if err != nil {
		return nil, err
	}
	return c.parseList(data), nil
}

// MediaPlaylistItems reads one media playlist with every string field
// gathered as scoring keywords
func (c *Client) MediaPlaylistItems(ctx context.Context, playlistUUID, playlistName string) ([]models.MediaPlaylistItem, error) {
	data, err := c.get(ctx, "/v1/media/playlist/"+playlistUUID)
	if err != nil {
		return nil, err
	}

	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding media playlist: %w", err)
	}

	records := mediaRecords(root)
	items := make([]models.MediaPlaylistItem, 0, len(records))
	for _, record := range records {
		uuid, name := recordIdentity(record)
		if uuid == "" && name == "" {
			continue
		}
		items = append(items, models.MediaPlaylistItem{
			UUID:         uuid,
			Name:         name,
			PlaylistUUID: playlistUUID,
			PlaylistName: playlistName,
			UpdatedAt:    recordUpdatedAt(record),
			FilePath:     stringField(record, "file_path", "path"),
			Keywords:     gatherStrings(record),
		})
	}
	return items, nil
}

// get performs one read against the host API
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

// send performs one request and maps transport failures to
// UnavailableError so callers can tell "host down" from "host refused"
func (c *Client) send(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("host %s %s: status %d", method, path, resp.StatusCode)
	}
	return data, nil
}

// parseList runs the typed parser first and degrades to the walker
func (c *Client) parseList(data []byte) []NamedRef {
	if refs := c.typed.parseRefs(data); len(refs) > 0 {
		return refs
	}
	return c.fallback.parseRefs(data)
}

func findPlaylistNode(nodes []playlistNode, want string) *NamedRef {
	for _, n := range nodes {
		if normalize.Title(n.ID.Name) == want {
			return &NamedRef{UUID: n.ID.UUID, Name: n.ID.Name}
		}
		if ref := findPlaylistNode(n.Children, want); ref != nil {
			return ref
		}
	}
	return nil
}

// mediaRecords finds the record list whether the payload is a bare array
// or wraps it in an items field
func mediaRecords(root interface{}) []map[string]interface{} {
	var rawList []interface{}
	switch node := root.(type) {
	case []interface{}:
		rawList = node
	case map[string]interface{}:
		if items, ok := node["items"].([]interface{}); ok {
			rawList = items
		}
	}
	var out []map[string]interface{}
	for _, item := range rawList {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func recordIdentity(record map[string]interface{}) (uuid, name string) {
	if id, ok := record["id"].(map[string]interface{}); ok {
		return stringField(id, "uuid"), stringField(id, "name")
	}
	return stringField(record, "uuid"), stringField(record, "name", "title")
}

// recordUpdatedAt accepts epoch milliseconds or an RFC3339 string
func recordUpdatedAt(record map[string]interface{}) int64 {
	switch v := record["updated_at"].(type) {
	case float64:
		return int64(v)
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Host API response structures

type libraryResponse struct {
	Items []struct {
		ID idRecord `json:"id"`
	} `json:"items"`
}

type timerRecord struct {
	ID            idRecord `json:"id"`
	AllowsOverrun bool     `json:"allows_overrun"`
}

type playlistNode struct {
	ID       idRecord       `json:"id"`
	Type     string         `json:"type"`
	Children []playlistNode `json:"children"`
}

type playlistItemsResponse struct {
	Items []struct {
		ID               idRecord `json:"id"`
		Type             string   `json:"type"`
		PresentationUUID string   `json:"presentation_uuid"`
	} `json:"items"`
}

type playlistWriteItem struct {
	Type string    `json:"type"`
	ID   idPayload `json:"id"`
}

type idRecord struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type idPayload struct {
	UUID string `json:"uuid,omitempty"`
	Name string `json:"name,omitempty"`
}
