package itsukaralink

import "encoding/json"

const (
	StatusOK = "ok"
	StatusNG = "ng"
)

type Liver struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Event is one entry of the feed as received. StartDate and EndDate are kept
// verbatim; the feed has used more than one timestamp layout.
type Event struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Public      int     `json:"public"`
	URL         string  `json:"url"`
	Thumbnail   *string `json:"thumbnail"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Recommend   bool    `json:"recommend"`
	Genre       *Genre  `json:"genre"`
	Liver       Liver   `json:"liver"`
}

type Data struct {
	Events []Event `json:"events"`
}

type EventsResponse struct {
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

func (r *EventsResponse) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Events never returns nil.
func (r *EventsResponse) Events() []Event {
	if r == nil || r.Data.Events == nil {
		return []Event{}
	}
	return r.Data.Events
}

func parseEventsResponse(body []byte) (*EventsResponse, error) {
	var out EventsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
