package entity

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validArticle() *NewsArticle {
	now := time.Now()
	return &NewsArticle{
		Title:       "New guidance on seasonal flu vaccines",
		SourceURL:   "https://news.example.org/flu-guidance",
		SourceName:  "BBC Health",
		PublishedAt: now,
		CreatedAt:   now,
		IsActive:    true,
	}
}

/* ─────────────────────────── Validate ─────────────────────────── */

func TestNewsArticle_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *NewsArticle)
		wantField string // "" なら valid
	}{
		{
			name:   "valid article",
			mutate: func(a *NewsArticle) {},
		},
		{
			name:      "empty title",
			mutate:    func(a *NewsArticle) { a.Title = "" },
			wantField: "title",
		},
		{
			name:      "whitespace-only title",
			mutate:    func(a *NewsArticle) { a.Title = "   " },
			wantField: "title",
		},
		{
			name:      "empty source URL",
			mutate:    func(a *NewsArticle) { a.SourceURL = "" },
			wantField: "source_url",
		},
		{
			name:      "title over limit",
			mutate:    func(a *NewsArticle) { a.Title = strings.Repeat("あ", MaxTitleLen+1) },
			wantField: "title",
		},
		{
			name:   "title exactly at limit",
			mutate: func(a *NewsArticle) { a.Title = strings.Repeat("x", MaxTitleLen) },
		},
		{
			name:      "description over limit",
			mutate:    func(a *NewsArticle) { a.Description = strings.Repeat("y", MaxDescriptionLen+1) },
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArticle()
			tt.mutate(a)

			err := a.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "title", Message: "must not be empty"}
	want := "validation error on field 'title': must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

/* ─────────────────────────── IsStaticSample ─────────────────────────── */

func TestNewsArticle_IsStaticSample(t *testing.T) {
	seeded := &NewsArticle{SourceURL: StaticSamplePrefix + "/news/sample-1"}
	if !seeded.IsStaticSample() {
		t.Error("seeded sample not detected")
	}

	real := validArticle()
	if real.IsStaticSample() {
		t.Errorf("genuine article %q flagged as static sample", real.SourceURL)
	}
}
