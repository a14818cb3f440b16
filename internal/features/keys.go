package features

import "go.trai.ch/quill/internal/core/domain"

// Resource roots. Mutations invalidate these prefixes.
var (
	PostsKey      = domain.Key("posts")
	CategoriesKey = domain.Key("categories")
	TagsKey       = domain.Key("tags")
	SectionsKey   = domain.Key("sections")
	UsersKey      = domain.Key("users")
	TemplatesKey  = domain.Key("post-templates")
	TrashKey      = domain.Key("trash", domain.ParamString("posts"))
	SearchKey     = domain.Key("search")
	DashboardKey  = domain.Key("dashboard")
	AnalyticsKey  = domain.Key("analytics")
	MediaKey      = domain.Key("media")
	AuthKey       = domain.Key("auth")
)

// PostListKey identifies a filtered post listing.
func PostListKey(filter domain.PostFilter) domain.QueryKey {
	if filter.IsZero() {
		return PostsKey
	}
	return PostsKey.With(filter.Param())
}

// PostKey identifies a single post.
func PostKey(id string) domain.QueryKey {
	return PostsKey.With(domain.ParamString(id))
}

// CategoryKey identifies a single category.
func CategoryKey(id string) domain.QueryKey {
	return CategoriesKey.With(domain.ParamString(id))
}

// UserKey identifies a single user.
func UserKey(id string) domain.QueryKey {
	return UsersKey.With(domain.ParamString(id))
}

// TemplateKey identifies a single post template.
func TemplateKey(id string) domain.QueryKey {
	return TemplatesKey.With(domain.ParamString(id))
}

// SearchResultsKey identifies the results for one search term.
func SearchResultsKey(term string) domain.QueryKey {
	return SearchKey.With(domain.ParamString(term))
}

// StatsKey identifies the dashboard counters.
func StatsKey() domain.QueryKey {
	return DashboardKey.With(domain.ParamString("stats"))
}

// PopularPostsKey identifies the most viewed posts.
func PopularPostsKey() domain.QueryKey {
	return AnalyticsKey.With(domain.ParamString("popular-posts"))
}

// MeKey identifies the signed-in user.
func MeKey() domain.QueryKey {
	return AuthKey.With(domain.ParamString("me"))
}
