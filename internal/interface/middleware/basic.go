package middleware

import "github.com/gin-gonic/gin"

// BasicAuth checks HTTP Basic email/password on every request and attaches the
// full user record.
type BasicAuth struct {
	Credentials CredentialChecker
}

func (b *BasicAuth) Authenticate(c *gin.Context) (*Identity, error) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="users"`)
		return nil, deny("missing basic credentials")
	}
	u, err := b.Credentials.CheckCredentials(c.Request.Context(), email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		c.Header("WWW-Authenticate", `Basic realm="users"`)
		return nil, deny("Credentials are not ok!")
	}
	return &Identity{ID: u.ID, Role: u.Role, User: u}, nil
}
