// Dev utility: mints an access token accepted by the JWT middleware, for
// exercising the API locally without the auth collaborator running.
//
//	JWT_SECRET=dev-secret go run ./cmd/gentoken operador01
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/middleware"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	username := "operador"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	fmt.Println(signed)
}
