package server

import (
	"net/http"

	"github.com/jrsteele09/impact-portal/identity"
)

const (
	// authCookieName holds the short-lived access token
	authCookieName = "auth_token"
	// refreshCookieName holds the long-lived refresh token
	refreshCookieName = "refresh_token"
)

func (s *Server) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// setSessionCookies writes the access cookie and, when the provider issued one, the refresh cookie
func (s *Server) setSessionCookies(w http.ResponseWriter, session *identity.Session) {
	http.SetCookie(w, s.sessionCookie(authCookieName, session.AccessToken, s.config.GetAccessCookieMaxAge()))
	if session.RefreshToken != "" {
		http.SetCookie(w, s.sessionCookie(refreshCookieName, session.RefreshToken, s.config.GetRefreshCookieMaxAge()))
	}
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie(authCookieName, "", -1))
	http.SetCookie(w, s.sessionCookie(refreshCookieName, "", -1))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// withSessionCookies returns a copy of r whose Cookie header carries the rotated tokens
func withSessionCookies(r *http.Request, session *identity.Session) *http.Request {
	replacements := map[string]string{authCookieName: session.AccessToken}
	if session.RefreshToken != "" {
		replacements[refreshCookieName] = session.RefreshToken
	}

	r = r.Clone(r.Context())
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if v, ok := replacements[c.Name]; ok {
			c.Value = v
			delete(replacements, c.Name)
		}
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	for _, name := range []string{authCookieName, refreshCookieName} {
		if v, ok := replacements[name]; ok {
			r.AddCookie(&http.Cookie{Name: name, Value: v})
		}
	}
	return r
}
