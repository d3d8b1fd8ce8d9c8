package plansource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"plansync/internal/classify"
	"plansync/internal/config"
	"plansync/internal/lyrics"
	"plansync/internal/models"
)

// Client talks to the plan source's JSON API
type Client struct {
	cfg        *config.PlanSourceConfig
	httpClient *http.Client
}

// NewClient builds a plan-source client, validating credentials up front
// when the OAuth client-credentials flow is configured
func NewClient(ctx context.Context, cfg *config.PlanSourceConfig) (*Client, error) {
	client := &Client{cfg: cfg}

	if cfg.AccessToken != "" {
		// Static token: no token endpoint round-trip
		client.httpClient = &http.Client{Timeout: cfg.Timeout()}
		return client, nil
	}

	oc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	if _, err := oc.Token(ctx); err != nil {
		return nil, &Error{Kind: KindUnauthorized, Op: "authenticate", Err: err}
	}
	client.httpClient = oc.Client(ctx)
	client.httpClient.Timeout = cfg.Timeout()
	return client, nil
}

// NextPlan fetches the next upcoming plan for the configured service type
// and canonicalizes it: items classified, song sections segmented into
// slides, order made stable
func (c *Client) NextPlan(ctx context.Context) (*models.Plan, error) {
	serviceType := c.cfg.ServiceTypeID
	if serviceType == "" {
		st, err := c.firstServiceType(ctx)
		if err != nil {
			return nil, err
		}
		serviceType = st
	}

	planData, err := c.nextPlanRecord(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	items, err := c.planItems(ctx, serviceType, planData.ID)
	if err != nil {
		return nil, err
	}

	plan := &models.Plan{
		ID:    planData.ID,
		Date:  planDate(planData.Attributes),
		Title: planTitle(planData.Attributes),
		Items: items,
	}
	sort.SliceStable(plan.Items, func(i, j int) bool {
		return plan.Items[i].Order < plan.Items[j].Order
	})
	return plan, nil
}

// firstServiceType resolves the default service type when none is configured
func (c *Client) firstServiceType(ctx context.Context) (string, error) {
	var resp serviceTypesResponse
	if err := c.get(ctx, c.cfg.BaseURL+"/service_types", &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", &Error{Kind: KindNotFound, Op: "service types"}
	}
	return resp.Data[0].ID, nil
}

func (c *Client) nextPlanRecord(ctx context.Context, serviceType string) (*planRecord, error) {
	url := fmt.Sprintf("%s/service_types/%s/plans?filter=future&order=sort_date&per_page=1",
		c.cfg.BaseURL, serviceType)
	var resp plansResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Kind: KindNotFound, Op: "next plan"}
	}
	return &resp.Data[0], nil
}

// planItems walks the item pages and resolves song arrangements as it goes
func (c *Client) planItems(ctx context.Context, serviceType, planID string) ([]models.PlanItem, error) {
	var items []models.PlanItem
	url := fmt.Sprintf("%s/service_types/%s/plans/%s/items?per_page=100",
		c.cfg.BaseURL, serviceType, planID)

	index := 0
	for url != "" {
		var resp itemsResponse
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, err
		}

		for _, record := range resp.Data {
			item := c.canonicalItem(ctx, record, index)
			items = append(items, item)
			index++
		}
		url = resp.Links.Next
	}
	return items, nil
}

// canonicalItem maps one raw item record into the canonical model
func (c *Client) canonicalItem(ctx context.Context, record itemRecord, index int) models.PlanItem {
	attrs := record.Attributes
	isHeader := strings.EqualFold(attrs.ItemType, "header")

	kind := models.KindAnnouncement
	switch strings.ToLower(attrs.ItemType) {
	case "song":
		kind = models.KindSong
	case "media", "video":
		kind = models.KindVideo
	}

	order := attrs.Sequence
	if order == 0 {
		order = index
	}

	item := models.PlanItem{
		ID:            record.ID,
		Kind:          kind,
		Title:         attrs.Title,
		Order:         order,
		IsHeader:      isHeader,
		LengthSeconds: attrs.Length,
		Description:   attrs.Description,
		Category:      classify.Classify(kind, attrs.Title, isHeader),
	}

	if kind == models.KindSong {
		songID := record.Relationships.Song.Data.ID
		arrangementID := record.Relationships.Arrangement.Data.ID
		if songID != "" {
			item.Song = c.songDetails(ctx, songID, arrangementID)
		}
	}
	return item
}

// songDetails resolves arrangement and sections for one song item.
// Failures degrade to a details-free song rather than failing the fetch;
// the item still matches and syncs by title.
func (c *Client) songDetails(ctx context.Context, songID, arrangementID string) *models.SongDetails {
	details := &models.SongDetails{SongID: songID, ArrangementID: arrangementID}
	if arrangementID == "" {
		return details
	}

	var arr arrangementResponse
	arrURL := fmt.Sprintf("%s/songs/%s/arrangements/%s", c.cfg.BaseURL, songID, arrangementID)
	if err := c.get(ctx, arrURL, &arr); err == nil {
		details.ArrangementName = arr.Data.Attributes.Name
		details.SequenceSummary = arr.Data.Attributes.SequenceSummary
		for i, s := range arr.Data.Attributes.Sequence {
			position := s.Position
			if position == 0 {
				position = i + 1
			}
			details.Sequence = append(details.Sequence, models.SequenceEntry{
				ID:        s.ID,
				Position:  position,
				Label:     s.Label,
				Number:    lyrics.OrdinalNumber(s.Number),
				SectionID: s.SectionID,
			})
		}
	}

	var secs sectionsResponse
	secURL := fmt.Sprintf("%s/songs/%s/arrangements/%s/sections", c.cfg.BaseURL, songID, arrangementID)
	if err := c.get(ctx, secURL, &secs); err == nil {
		for _, s := range secs.Data {
			section := models.SongSection{
				ID:            s.ID,
				Name:          s.Attributes.Name,
				SequenceLabel: s.Attributes.Label,
				Lyrics:        s.Attributes.Lyrics,
			}
			section.LyricLines, section.LyricSlides = lyrics.Segment(s.Attributes.Lyrics)
			details.Sections = append(details.Sections, section)
		}
	}
	return details
}

// get performs one API read and classifies failures
func (c *Client) get(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "build request", Err: err}
	}
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "request", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Op: "request"}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: resp.StatusCode, Op: "request"}
	case resp.StatusCode != http.StatusOK:
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Op: "request"}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &Error{Kind: KindNetwork, Op: "decode response", Err: err}
	}
	return nil
}

func planTitle(attrs planAttributes) string {
	if attrs.Title != "" {
		return attrs.Title
	}
	if attrs.Dates != "" {
		return attrs.Dates
	}
	return "Service Plan"
}

func planDate(attrs planAttributes) string {
	if attrs.SortDate != "" {
		if t, err := time.Parse(time.RFC3339, attrs.SortDate); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return attrs.Dates
}

// Plan source API response structures

type serviceTypesResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type plansResponse struct {
	Data []planRecord `json:"data"`
}

type planRecord struct {
	ID         string         `json:"id"`
	Attributes planAttributes `json:"attributes"`
}

type planAttributes struct {
	Title    string `json:"title"`
	Dates    string `json:"dates"`
	SortDate string `json:"sort_date"`
}

type itemsResponse struct {
	Data  []itemRecord `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type itemRecord struct {
	ID         string `json:"id"`
	Attributes struct {
		Title       string `json:"title"`
		ItemType    string `json:"item_type"`
		Sequence    int    `json:"sequence"`
		Length      int    `json:"length"`
		Description string `json:"description"`
	} `json:"attributes"`
	Relationships struct {
		Song        relationship `json:"song"`
		Arrangement relationship `json:"arrangement"`
	} `json:"relationships"`
}

type relationship struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type arrangementResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Name            string `json:"name"`
			SequenceSummary string `json:"sequence_summary"`
			Sequence        []struct {
				ID        string `json:"id"`
				Position  int    `json:"position"`
				Label     string `json:"label"`
				Number    string `json:"number"`
				SectionID string `json:"section_id"`
			} `json:"sequence"`
		} `json:"attributes"`
	} `json:"data"`
}

type sectionsResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name   string `json:"name"`
			Label  string `json:"label"`
			Lyrics string `json:"lyrics"`
		} `json:"attributes"`
	} `json:"data"`
}
