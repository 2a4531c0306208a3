package utils

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"social-scheduler/domain/model"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken issues a signed JWT for the user. The issuer carries the user
// id so the auth middleware can recover it without a database hit.
func GenerateToken(user model.User, secretKey string, ttl time.Duration) (string, error) {
	now := GetCurrentTime()
	claims := model.UserClaims{
		UserName: user.UserName,
		Tier:     string(user.Tier),
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.FormatInt(user.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
