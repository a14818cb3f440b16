package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.trai.ch/quill/internal/core/domain"
)

// sessionJar is a cookie jar that can be emptied on logout.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset() {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
}

// Cookies returns the session cookies sent with requests to the API.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.base)
}

// PersistSession saves the current session cookies. It is a no-op without a
// session store.
func (c *Client) PersistSession() error {
	if c.sessions == nil {
		return nil
	}

	cookies := c.jar.Cookies(c.base)
	sess := &domain.Session{
		BaseURL: c.base.String(),
		Cookies: make([]domain.SessionCookie, 0, len(cookies)),
		SavedAt: time.Now().UTC(),
	}
	for _, cookie := range cookies {
		sess.Cookies = append(sess.Cookies, domain.SessionCookieFrom(cookie))
	}
	return c.sessions.Save(sess)
}

// ClearSession drops every cookie and removes the saved session.
func (c *Client) ClearSession() error {
	c.jar.reset()
	if c.sessions == nil {
		return nil
	}
	return c.sessions.Clear()
}

func (c *Client) restoreSession() error {
	if c.sessions == nil {
		return nil
	}
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil || sess.BaseURL != c.base.String() {
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(sess.Cookies))
	for _, sc := range sess.Cookies {
		cookie := sc.HTTPCookie()
		if cookie.Path == "" {
			cookie.Path = "/"
		}
		cookies = append(cookies, cookie)
	}
	c.jar.SetCookies(c.base, cookies)
	return nil
}
