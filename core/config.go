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

type (
	Config struct {
		Debug           bool
		TestMode        bool
		Env             string // DEV (local; default), TEST, QA, PROD
		Build           string
		AppName         string
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		RollbarToken    string
		SendgridApiKey  string
		FromEmail       string
		FromName        string

		Server   ServerConfig
		Database DatabaseConfig
		AI       AIConfig
		Storage  StorageConfig
		Faculty  FacultyConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		AllowOrigins              []string
		DisableReqLogs            bool
		MaxUploadSize             string // e.g. 20M
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

	AIConfig struct {
		GeminiAPIKey       string
		GeminiModel        string
		GeminiBaseURL      string
		MistralAPIKey      string
		MistralBaseURL     string
		MistralChatModel   string
		MistralVisionModel string
		RequestTimeout     time.Duration
	}

	StorageConfig struct {
		URL    string
		Key    string
		Bucket string
	}

	// FacultyConfig is the faculty account bootstrapped on start up (if Email is set).
	FacultyConfig struct {
		Email    string
		Name     string
		Password string
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.FromName, Address: conf.FromEmail}
}

// NewConfig loads the configuration from the environment (and `config/.env.<env>` if it exists).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Campus Buddy")
	v.SetDefault("secretKey", "x3!9k@w^ud7$cq+0jz#e2(m8v)f4=nq1*h6b%ly5p&r")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("fromName", "Campus Buddy")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 2*time.Minute) // AI calls are slow
	v.SetDefault("server.shutdownTimeout", 20*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.allowOrigins", []string{"*"})
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.maxUploadSize", "20M")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "campusbuddy")
	v.SetDefault("database.user", "campusbuddy")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("ai.geminiApiKey", "")
	v.SetDefault("ai.geminiModel", "gemini-1.5-flash-latest")
	v.SetDefault("ai.geminiBaseURL", "")
	v.SetDefault("ai.mistralApiKey", "")
	v.SetDefault("ai.mistralBaseURL", "https://api.mistral.ai/v1/")
	v.SetDefault("ai.mistralChatModel", "mistral-large-latest")
	v.SetDefault("ai.mistralVisionModel", "pixtral-large-latest")
	v.SetDefault("ai.requestTimeout", 90*time.Second)

	v.SetDefault("storage.url", "")
	v.SetDefault("storage.key", "")
	v.SetDefault("storage.bucket", "college-documents")

	v.SetDefault("faculty.email", "")
	v.SetDefault("faculty.name", "Faculty Admin")
	v.SetDefault("faculty.password", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// vendor secrets keep their conventional names
	_ = v.BindEnv("ai.geminiApiKey", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.mistralApiKey", "MISTRAL_API_KEY")
	_ = v.BindEnv("storage.url", "SUPABASE_URL")
	_ = v.BindEnv("storage.key", "SUPABASE_SERVICE_ROLE_KEY")
	_ = v.BindEnv("rollbarToken", "ROLLBAR_TOKEN")
	_ = v.BindEnv("sendgridApiKey", "SENDGRID_API_KEY")
	_ = v.BindEnv("database.host", "DATABASE_HOST")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD")
	_ = v.BindEnv("database.adminPassword", "DATABASE_ADMIN_PASSWORD")

	workDir := Getwd()
	v.SetDefault("workDir", workDir)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}

// NewTestConfig returns a Config suitable for tests: no I/O, no external services.
func NewTestConfig() *Config {
	return &Config{
		Debug:           false,
		TestMode:        true,
		Env:             "TEST",
		Build:           "test",
		AppName:         "Campus Buddy",
		SecretKey:       "secret",
		FrontendBaseURL: "http://localhost:5173",
		FromEmail:       "noreply@localhost",
		FromName:        "Campus Buddy",
		Server: ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			AllowOrigins:              []string{"*"},
			DisableReqLogs:            true,
			MaxUploadSize:             "1M",
		},
		AI: AIConfig{
			MistralChatModel:   "mistral-large-latest",
			MistralVisionModel: "pixtral-large-latest",
			GeminiModel:        "gemini-1.5-flash-latest",
			RequestTimeout:     5 * time.Second,
		},
		Storage: StorageConfig{Bucket: "college-documents"},
	}
}
