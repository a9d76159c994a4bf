package core

import (
	"strings"
	"time"
)

// DefaultTitle is assigned to notes saved with a blank title.
const DefaultTitle = "Untitled Note"

// Note is the central entity of the domain.
// It is the only record that is persisted; tags are derived from it.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Tag       string    `json:"tag" yaml:"tag"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Untagged reports whether the note carries no tag.
func (n Note) Untagged() bool {
	return n.Tag == ""
}

// Patch carries the fields to merge into an existing note.
// Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
	Tag     *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tag == nil
}

func (p Patch) apply(n *Note) {
	if p.Title != nil {
		n.Title = titleOrDefault(*p.Title)
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tag != nil {
		n.Tag = *p.Tag
	}
}

func titleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return DefaultTitle
	}
	return title
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}
