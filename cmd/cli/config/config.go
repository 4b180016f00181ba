package config

import "os"

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the Journal Prompt API.
// It can be overridden with the JOURNAL_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("JOURNAL_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Username returns the default Basic auth username from JOURNAL_USERNAME.
func Username() string {
	return os.Getenv("JOURNAL_USERNAME")
}

// Password returns the default Basic auth password from JOURNAL_PASSWORD.
func Password() string {
	return os.Getenv("JOURNAL_PASSWORD")
}
