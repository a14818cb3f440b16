package domain

import (
	"net/url"
	"strconv"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	// PostDraft is an unpublished post.
	PostDraft PostStatus = "draft"
	// PostPublished is a post visible on the site.
	PostPublished PostStatus = "published"
	// PostScheduled is a post that publishes at PublishedAt.
	PostScheduled PostStatus = "scheduled"
)

// Post is an article managed by the CMS.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Status      PostStatus `json:"status"`
	CategoryID  string     `json:"categoryId,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	AuthorID    string     `json:"authorId,omitempty"`
	TemplateID  string     `json:"templateId,omitempty"`
	Views       int64      `json:"views,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// PostInput is the body of a create or full replace of a post.
type PostInput struct {
	Title      string     `json:"title"`
	Content    string     `json:"content,omitempty"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Status     PostStatus `json:"status,omitempty"`
	CategoryID string     `json:"categoryId,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	TemplateID string     `json:"templateId,omitempty"`
}

// PostPatch is a partial update of a post. Nil fields are left unchanged.
type PostPatch struct {
	Title      *string     `json:"title,omitempty"`
	Content    *string     `json:"content,omitempty"`
	Excerpt    *string     `json:"excerpt,omitempty"`
	Status     *PostStatus `json:"status,omitempty"`
	CategoryID *string     `json:"categoryId,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

// PostFilter narrows a post listing. Zero fields are omitted.
type PostFilter struct {
	Status     PostStatus
	CategoryID string
	Tag        string
	Page       int
	PerPage    int
}

// Values encodes the filter as URL query parameters.
func (f PostFilter) Values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.CategoryID != "" {
		v.Set("categoryId", f.CategoryID)
	}
	if f.Tag != "" {
		v.Set("tag", f.Tag)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(f.PerPage))
	}
	return v
}

// Param encodes the filter as a record key parameter.
func (f PostFilter) Param() Param {
	fields := map[string]Param{}
	if f.Status != "" {
		fields["status"] = ParamString(string(f.Status))
	}
	if f.CategoryID != "" {
		fields["categoryId"] = ParamString(f.CategoryID)
	}
	if f.Tag != "" {
		fields["tag"] = ParamString(f.Tag)
	}
	if f.Page > 0 {
		fields["page"] = ParamInt(int64(f.Page))
	}
	if f.PerPage > 0 {
		fields["perPage"] = ParamInt(int64(f.PerPage))
	}
	return ParamRecord(fields)
}

// IsZero reports whether no filter field is set.
func (f PostFilter) IsZero() bool {
	return f == PostFilter{}
}

// TrashedPost is a soft-deleted post.
type TrashedPost struct {
	Post
	DeletedAt time.Time `json:"deletedAt"`
}

// Category groups posts by topic.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"postCount"`
}

// CategoryInput is the body of a category create or update.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label attached to posts.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	PostCount int    `json:"postCount,omitempty"`
}

// TagInput is the body of a tag create or update.
type TagInput struct {
	Name string `json:"name"`
}

// Section is a layout block on the public site.
type Section struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Position int               `json:"position"`
	Visible  bool              `json:"visible"`
	Settings map[string]string `json:"settings,omitempty"`
}

// SectionInput is the body of a section create or update.
type SectionInput struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Visible  bool              `json:"visible"`
	Settings map[string]string `json:"settings,omitempty"`
}

// SectionOrder is the body of a section reorder request.
type SectionOrder struct {
	IDs []string `json:"ids"`
}

// User is an account with access to the admin panel.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostTemplate is a reusable starting point for new posts.
type PostTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

// SearchResult is one hit of a full-text search.
type SearchResult struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// DashboardStats summarizes the content of the site.
type DashboardStats struct {
	Posts      int   `json:"posts"`
	Published  int   `json:"published"`
	Drafts     int   `json:"drafts"`
	Categories int   `json:"categories"`
	Tags       int   `json:"tags"`
	Users      int   `json:"users"`
	Trashed    int   `json:"trashed"`
	Views      int64 `json:"views"`
}

// PopularPost is an analytics row for the most viewed posts.
type PopularPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

// Dashboard combines the stats and analytics shown on the landing page.
type Dashboard struct {
	Stats   DashboardStats `json:"stats"`
	Popular []PopularPost  `json:"popular"`
}

// MediaItem is an uploaded file in the media library.
type MediaItem struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
