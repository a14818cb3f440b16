package domain

import (
	"net/http"
	"time"
)

// Session is the persisted authentication state of the CLI.
type Session struct {
	BaseURL string          `json:"baseUrl"`
	Cookies []SessionCookie `json:"cookies"`
	SavedAt time.Time       `json:"savedAt"`
}

// SessionCookie is the serializable subset of an http.Cookie.
type SessionCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

// HTTPCookie converts c to an http.Cookie.
func (c SessionCookie) HTTPCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
}

// SessionCookieFrom converts an http.Cookie to its serializable form.
func SessionCookieFrom(c *http.Cookie) SessionCookie {
	return SessionCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
	}
}
