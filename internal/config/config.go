package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Portal
	PortalBaseURL string

	// Supabase (publish stage). Key and URL are validated by the store
	// package, not here, so the scrape/process stages can run without them.
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
	// Optional direct Postgres DSN. When set, the publisher talks to the
	// database directly instead of going through the REST API.
	SupabaseDBDSN string

	// SFTP (exportcsv delivery)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
	SFTPKnownHosts            string
}

func Load() Config {
	return Config{
		PortalBaseURL: getenv("PORTAL_BASE_URL", "https://www.bachelorsportal.com"),

		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		SupabaseTable: getenv("SUPABASE_TABLE", "bachelor_programs"),
		SupabaseDBDSN: os.Getenv("SUPABASE_DB_DSN"),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
		SFTPKnownHosts:            os.Getenv("SFTP_KNOWN_HOSTS"),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
