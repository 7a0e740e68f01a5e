package model

import (
	"strings"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// Tag labels a frame for filtering. Older payloads carry bare tag names
// without ids, so identity falls back to the lowercased name.
type Tag struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// Key returns the identity used for equality and set membership:
// the id when present, else the lowercased name.
func (t Tag) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return strings.ToLower(t.Name)
}

// TagsFromRaw converts decoder tag entries into domain tags.
func TagsFromRaw(raw []decode.RawTag) []Tag {
	if raw == nil {
		return nil
	}
	tags := make([]Tag, 0, len(raw))
	for _, r := range raw {
		tag := Tag{Name: r.Name}
		if r.ID != nil {
			tag.ID = *r.ID
		}
		if r.Group != nil {
			tag.Group = *r.Group
		}
		tags = append(tags, tag)
	}
	return tags
}

// TagGroup is a server-defined grouping of selectable tags.
type TagGroup struct {
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}
