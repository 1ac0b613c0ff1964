package config

import "os"

type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	Auth       AuthConfig
	Cloudinary CloudinaryConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Port string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AuthConfig struct {
	JWTSecret        string
	JWTTTL           string
	AdminUsername    string
	AdminPassword    string
	RecoveryMode     string
	RecoveryUsername string
	RecoveryPassword string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type CORSConfig struct {
	AllowedOrigins string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTTTL:           getenv("JWT_TTL", "168h"),
			AdminUsername:    os.Getenv("ADMIN_USERNAME"),
			AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
			RecoveryMode:     os.Getenv("AUTH_RECOVERY_MODE"),
			RecoveryUsername: os.Getenv("AUTH_RECOVERY_USERNAME"),
			RecoveryPassword: os.Getenv("AUTH_RECOVERY_PASSWORD"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getenv("CLOUDINARY_FOLDER", "gumusqr"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
