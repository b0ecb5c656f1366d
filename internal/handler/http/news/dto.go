// Package news provides HTTP handlers for news article endpoints.
// It includes handlers for listing and reading articles plus the
// integration endpoints that trigger pipeline maintenance.
package news

import "time"

// DTO represents the JSON structure for news article data transfer.
type DTO struct {
	ID          int64     `json:"id" example:"1"`
	Title       string    `json:"title" example:"New hypertension guidelines released"`
	Description string    `json:"description" example:"A plain-text summary of the article"`
	Content     string    `json:"content,omitempty" example:"<p>Full article body</p>"`
	ImageURL    string    `json:"image_url,omitempty" example:"https://img.example.org/lead.jpg"`
	SourceURL   string    `json:"source_url" example:"https://news.example.org/article/1"`
	SourceName  string    `json:"source_name" example:"BBC Health"`
	PublishedAt time.Time `json:"published_at" example:"2026-03-10T09:30:00Z"`
	CreatedAt   time.Time `json:"created_at" example:"2026-03-10T12:00:00Z"`
	IsActive    bool      `json:"is_active" example:"true"`
}

// RefreshResponse is returned by the manual refresh endpoint.
type RefreshResponse struct {
	Message string `json:"message" example:"News refreshed successfully"`
	Count   int    `json:"count" example:"20"`
}

// ClearStaticResponse is returned by the static sample cleanup endpoint.
type ClearStaticResponse struct {
	Message string `json:"message" example:"Static sample articles removed"`
	Deleted int64  `json:"deleted" example:"4"`
}
