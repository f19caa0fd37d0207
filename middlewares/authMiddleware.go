package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and resolves the caller's company
// and role through their profile. Routes that require no tenant (onboarding)
// use OptionalCompany instead.
func AuthMiddleware() gin.HandlerFunc {
	return authHandler(false)
}

// OptionalCompany authenticates the user but tolerates a missing profile, for
// the onboarding flow where the company does not exist yet.
func OptionalCompany() gin.HandlerFunc {
	return authHandler(true)
}

func authHandler(allowMissingProfile bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = strings.TrimPrefix(auth, "Bearer ")

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || claim.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		// The correlation id middleware already ran; the request context
		// keeps the id it assigned.
		ctx := c.Request.Context()
		ctx = utils.SetUserIdInContext(ctx, claim.Subject)
		ctx = utils.SetUserEmailInContext(ctx, claim.Email)

		profile, err := models.GetProfile(ctx, claim.Subject)
		if err != nil {
			if allowMissingProfile {
				c.Request = c.Request.WithContext(ctx)
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no profile for this user, complete onboarding first"})
			c.Abort()
			return
		}

		ctx = utils.SetCompanyIdInContext(ctx, profile.CompanyId)
		ctx = utils.SetRoleInContext(ctx, profile.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
