package models

// NoGenreID is stored as genre_id when an event has no genre.
const NoGenreID int64 = -1

const EventsCollection = "events"

type LiverRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventRecord is the stored projection of a feed event.
type EventRecord struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Public      int      `json:"public"`
	URL         string   `json:"url"`
	Thumbnail   *string  `json:"thumbnail"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Recommend   bool     `json:"recommend"`
	GenreID     int64    `json:"genre_id"`
	Liver       LiverRef `json:"liver"`
}
