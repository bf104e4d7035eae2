package supabase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/supabase-community/gotrue-go"
)

var authClient gotrue.Client

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	parts := strings.Split(url, ".")
	return parts[0]
}

// InitClient initializes the Supabase authentication client
func InitClient(supabaseURL, supabaseKey string) error {
	projectRef := extractProjectRef(supabaseURL)

	slog.Info("Initializing Supabase client", "project_ref", projectRef)

	client := gotrue.New(projectRef, supabaseKey)
	authClient = client

	if _, err := client.GetSettings(); err != nil {
		return fmt.Errorf("failed to connect to Supabase: %w", err)
	}

	slog.Info("Supabase connection successful")
	return nil
}

// GetClient returns the initialized Supabase authentication client
func GetClient() gotrue.Client {
	if authClient == nil {
		// Initialize with environment variables as fallback
		url := os.Getenv("SUPABASE_URL")
		key := os.Getenv("SUPABASE_SERVICE_KEY") // Use service key for admin operations

		if url == "" || key == "" {
			panic("SUPABASE_URL and SUPABASE_SERVICE_KEY environment variables must be set")
		}

		authClient = gotrue.New(extractProjectRef(url), key)
	}
	return authClient
}

// SignIn validates the credentials against Supabase auth and returns the
// authenticated user's ID on success.
func SignIn(email, password string) (string, error) {
	client := GetClient()

	res, err := client.SignInWithEmailPassword(email, password)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return "", errors.New("authentication failed: no session returned")
	}

	return res.User.ID.String(), nil
}
