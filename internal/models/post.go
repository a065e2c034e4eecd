package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Author is the structured name of a post's author.
type Author struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName"  bson:"lastName"`
}

// Name is the author's display name.
func (a Author) Name() string {
	return ComposeFullName(a.FirstName, a.LastName)
}

// UnmarshalJSON accepts either {"firstName": ..., "lastName": ...} or a single
// display-name string.
func (a *Author) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		a.FirstName, a.LastName = DecomposeFullName(name)
		return nil
	}
	type plain Author
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// Post is a blog post as persisted by the store.
type Post struct {
	ID      string
	Author  Author
	Title   string
	Content string
	Created time.Time
}

// PostUpdate carries the whitelisted fields of a partial update. Nil fields are
// left untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Author  *Author
}

// Empty reports whether the update changes nothing.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil
}

// Apply returns p with the update's fields applied.
func (u PostUpdate) Apply(p Post) Post {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	return p
}

// PostResponse is the public representation of a Post.
type PostResponse struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// Response shapes p for the API.
func (p Post) Response() PostResponse {
	return PostResponse{
		ID:      p.ID,
		Author:  p.Author.Name(),
		Title:   p.Title,
		Content: p.Content,
		Created: p.Created,
	}
}
