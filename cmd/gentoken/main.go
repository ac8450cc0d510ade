// cmd/gentoken/main.go — mints a development JWT for exercising the API.
// Usage: go run cmd/gentoken/main.go -user <uuid> -role cashier -register REG-01
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Waesta/Wapos-sub001/internal/middleware"
)

func main() {
	userID := flag.String("user", uuid.NewString(), "operator user id (uuid)")
	username := flag.String("username", "dev-operator", "username claim")
	role := flag.String("role", "admin", "role: cashier | supervisor | admin")
	register := flag.String("register", "REG-01", "register code scope")
	hours := flag.Int("hours", 8, "token lifetime in hours")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	claims := middleware.JWTClaims{
		UserID:       *userID,
		Username:     *username,
		Role:         *role,
		RegisterCode: *register,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(*hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
