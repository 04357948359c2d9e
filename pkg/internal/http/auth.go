package http

import (
	"strings"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// authMiddleware resolves the bearer token into an account and stashes it in
// the request locals. Requests without a usable token simply stay anonymous;
// individual services decide whether that is acceptable.
func authMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) == 0 || !strings.HasPrefix(header, "Bearer ") {
		return c.Next()
	}

	token, err := jwt.ParseWithClaims(
		strings.TrimPrefix(header, "Bearer "),
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(viper.GetString("security.jwt_secret")), nil
		},
	)
	if err != nil || !token.Valid {
		return c.Next()
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return c.Next()
	}

	var account models.Account
	if err := database.C.
		Where("name = ? AND disabled = ? AND deleted = ?", subject, false, false).
		First(&account).Error; err != nil {
		return c.Next()
	}

	c.Locals("user", account)
	return c.Next()
}
