package entities

type EventsList struct {
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Events []EventResponse `json:"events"`
}

type FeedList struct {
	Lat      float64             `json:"lat"`
	Lon      float64             `json:"lon"`
	RadiusKm float64             `json:"radius_km"`
	Events   []FeedEventResponse `json:"events"`
}
