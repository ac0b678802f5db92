package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/shopfront/internal/config"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/types"
)

// AdminUserID is recorded as created_by/updated_by for admin actions
const AdminUserID = "admin"

// GuestAuthenticateMiddleware lets storefront requests through with the
// default user. Customer identity is carried in the request body.
func GuestAuthenticateMiddleware(c *gin.Context) {
	ctx := types.SetUserID(c.Request.Context(), types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// AdminAuthenticateMiddleware guards the admin route group with the API
// keys from auth.admin_api_key
func AdminAuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	header := cfg.Auth.AdminAPIKey.Header
	if header == "" {
		header = types.HeaderAdminAPIKey
	}
	keys := cfg.Auth.AdminAPIKey.Keys

	return func(c *gin.Context) {
		key := c.GetHeader(header)
		if key == "" || !validAdminKey(keys, key) {
			logger.Debugw("rejected admin request", "path", c.FullPath())
			_ = c.Error(ierr.NewError("invalid admin api key").
				WithHint("A valid admin API key is required").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetUserID(ctx, AdminUserID)
		ctx = types.SetIsAdmin(ctx, true)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func validAdminKey(keys []string, key string) bool {
	valid := false
	for _, k := range keys {
		if k != "" && subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			valid = true
		}
	}
	return valid
}
