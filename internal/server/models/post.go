package models

import "time"

type Post struct {
	ID          string
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Category    string
	Tags        []string
	Author      string
	AuthorImage string
	Image       string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostFilter selects published posts. An empty Category or Search means no
// restriction.
type PostFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

type CategoryCount struct {
	Category string
	Count    int
}
