package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/worklane/worklane/internal/db"
)

// verify_provider marks a provider's identity verification as passed by
// email, bypassing the document review flow. Meant for support use.
func main() {
	email := flag.String("email", "", "Email of the provider to mark verified")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/verify_provider/main.go -email provider@example.com")
	}

	db.Init()

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET kyc_status = 'verified' WHERE email = $1 AND role = 'provider'`, *email)
	if err != nil {
		log.Fatalf("failed to verify provider: %v", err)
	}

	if ct.RowsAffected() == 0 {
		log.Fatalf("no provider found with email: %s", *email)
	}

	fmt.Printf("Provider %s marked verified.\n", *email)
}
