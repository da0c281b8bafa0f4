package service

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// AuthService guards the approval decision endpoint with a TOTP code so a
// leaked webhook URL alone cannot approve content.
type AuthService struct {
	logger     *zap.Logger
	totpSecret string
}

func NewAuthService(logger *zap.Logger, totpSecret string) *AuthService {
	return &AuthService{
		logger:     logger,
		totpSecret: totpSecret,
	}
}

func (a *AuthService) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Crest Approvals",
		AccountName: "reviewer",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return key.Secret(), nil
}

func (a *AuthService) ValidateCode(code string) bool {
	valid := totp.Validate(code, a.totpSecret)
	if !valid {
		a.logger.Warn("TOTP code validation failed")
	}
	return valid
}

// Middleware rejects requests without a valid X-Approval-Code header. When no
// secret is configured the check is skipped, which is only acceptable for
// local development.
func (a *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.totpSecret == "" {
			c.Next()
			return
		}

		code := c.GetHeader("X-Approval-Code")
		if code == "" || !a.ValidateCode(code) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Valid approval code required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
