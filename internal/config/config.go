package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr   string
	DBPath     string
	JWTSecret  string
	AdminEmail string
	AdminPass  string
	GelfAddr   string
	CORSOrigin string

	// TablePrefix namespaces dynamic tables away from system tables.
	TablePrefix string
	// ListExclude is the default set of columns hidden from record lists.
	ListExclude []string

	Storage        string // "local" or "oxidb"
	UploadDir      string
	UploadBucket   string
	AssetBaseURL   string
	MaxUploadBytes int64

	OxiDBHost string
	OxiDBPort int
	PoolSize  int
}

func Load() *Config {
	return &Config{
		HTTPAddr:   getEnv("CMS_ADDR", ":8080"),
		DBPath:     getEnv("CMS_DB_PATH", "data/cms.db"),
		JWTSecret:  getEnv("CMS_JWT_SECRET", "wbpower-dev-secret-change-me"),
		AdminEmail: getEnv("CMS_ADMIN_EMAIL", "admin@wbpower.local"),
		AdminPass:  getEnv("CMS_ADMIN_PASS", "admin123"),
		GelfAddr:   getEnv("CMS_GELF_ADDR", ""),
		CORSOrigin: getEnv("CMS_CORS_ORIGIN", "*"),

		TablePrefix: getEnv("CMS_TABLE_PREFIX", "custompost_"),
		ListExclude: getEnvList("CMS_LIST_EXCLUDE", []string{"updated_at"}),

		Storage:        strings.ToLower(getEnv("CMS_STORAGE", "local")),
		UploadDir:      getEnv("CMS_UPLOAD_DIR", "public"),
		UploadBucket:   getEnv("CMS_UPLOAD_BUCKET", "cms_uploads"),
		AssetBaseURL:   getEnv("CMS_ASSET_BASE_URL", ""),
		MaxUploadBytes: int64(getEnvInt("CMS_MAX_UPLOAD_MB", 12)) << 20,

		OxiDBHost: getEnv("OXIDB_HOST", "127.0.0.1"),
		OxiDBPort: getEnvInt("OXIDB_PORT", 4444),
		PoolSize:  getEnvInt("CMS_POOL_SIZE", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// getEnvList splits a comma-separated value. A variable set to "-" yields an
// empty list, so the default can be switched off.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if v == "-" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
