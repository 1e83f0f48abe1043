package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the process-wide configuration, loaded once at init.
var Conf *Config

func init() {
	Conf = NewConfig()
}

type (
	Config struct {
		AppName              string
		Env                  string // DEV (default), TEST, QA, PROD
		Build                string
		Debug                bool
		TestMode             bool
		WorkDir              string
		SecretKey            string
		MediaRoot            string
		SiteBaseURL          string
		SupportEmail         string
		DefaultAdminPassword string
		SendgridAPIKey       string
		RollbarToken         string
		defaultFromEmail     string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		URL      string
		CacheTTL time.Duration
	}
)

// NewConfig reads the configuration from AEE_* environment variables,
// after loading `.env.<env>` (and `.env`) from the project root when present.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("appName", "AEE Portal")
	v.SetDefault("env", "DEV")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("secretKey", "k3y#aee-ui-portal(local)-n0t-for-prod$2024")
	v.SetDefault("mediaRoot", "uploads")
	v.SetDefault("siteBaseURL", "http://localhost:8000")
	v.SetDefault("supportEmail", "aee@ui.edu.ng")
	v.SetDefault("defaultFromEmail", "AEE Portal <noreply@localhost>")
	v.SetDefault("defaultAdminPassword", "aeeAdmin")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "aee_portal")
	v.SetDefault("database.user", "aee")
	v.SetDefault("database.password", "aee")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cacheTTL", 5*time.Minute)

	v.SetEnvPrefix("AEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := strings.ToUpper(os.Getenv("AEE_ENV"))
	if env == "" {
		env = "DEV"
	}
	wd := Getwd()
	loadDotEnv(filepath.Join(wd, ".env."+strings.ToLower(env)))
	loadDotEnv(filepath.Join(wd, ".env"))

	conf := &Config{
		AppName:              v.GetString("appName"),
		Env:                  env,
		Build:                v.GetString("build"),
		Debug:                v.GetBool("debug"),
		TestMode:             env == "TEST",
		WorkDir:              wd,
		SecretKey:            v.GetString("secretKey"),
		MediaRoot:            v.GetString("mediaRoot"),
		SiteBaseURL:          strings.TrimSuffix(v.GetString("siteBaseURL"), "/"),
		SupportEmail:         v.GetString("supportEmail"),
		DefaultAdminPassword: v.GetString("defaultAdminPassword"),
		SendgridAPIKey:       v.GetString("sendgridAPIKey"),
		RollbarToken:         v.GetString("rollbarToken"),
		defaultFromEmail:     v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			ReadTimeout:        v.GetDuration("server.readTimeout"),
			WriteTimeout:       v.GetDuration("server.writeTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis.url"),
			CacheTTL: v.GetDuration("redis.cacheTTL"),
		},
	}
	if !filepath.IsAbs(conf.MediaRoot) {
		conf.MediaRoot = filepath.Join(wd, conf.MediaRoot)
	}
	return conf
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			log.Fatalf("config.godotenv(%s): %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", path, err)
	}
}

// DefaultFromEmail parses the configured sender; it falls back to a bare noreply address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
