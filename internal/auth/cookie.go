package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieName is the cookie carrying the session token
const CookieName = "laludev_session"

// CookieCodec signs and encrypts the session token stored in the browser.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewCookieCodec derives the signing and encryption keys from secret.
func NewCookieCodec(secret string, secure bool, maxAge time.Duration) *CookieCodec {
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	sc := securecookie.New(h[:], e[:])
	sc.MaxAge(int(maxAge.Seconds()))

	return &CookieCodec{sc: sc, secure: secure}
}

// Write sets the session cookie holding token.
func (cc *CookieCodec) Write(w http.ResponseWriter, token string, expiresAt time.Time) error {
	encoded, err := cc.sc.Encode(CookieName, token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the token from the request cookie, or "" when the cookie is
// missing or fails verification.
func (cc *CookieCodec) Read(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	var token string
	if err := cc.sc.Decode(CookieName, cookie.Value, &token); err != nil {
		return ""
	}
	return token
}

// Clear removes the session cookie from the client.
func (cc *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
