package news

import "time"

// Item is one headline, unique by Link.
type Item struct {
	Link        string
	GameCode    string
	Headline    string
	Description string
	ImageURL    string
	PublishedAt time.Time
}
