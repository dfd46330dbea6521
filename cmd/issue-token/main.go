// Command issue-token mints an operator bearer token signed with the
// configured AUTH_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"syntra-pos/config"
	"syntra-pos/internal/utils"
)

func main() {
	operator := flag.String("operator", "", "operator id placed in the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to AUTH_TOKEN_TTL")
	flag.Parse()

	if *operator == "" {
		log.Fatal("-operator is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	issuer, err := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, exp, err := issuer.GenerateToken(*operator, lifetime, time.Now())
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("token for %s expires at %s", *operator, exp.Format(time.RFC3339))
}
