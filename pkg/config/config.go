package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrGHLNotConfigured is returned when the CRM credentials are absent.
var ErrGHLNotConfigured = errors.New("GHL configuration is missing. Please check your environment variables")

// Config holds all application configuration values
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	GHL        GHLConfig
	Supabase   SupabaseConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ToolkitURL string
	BookingURL string
}

type ServerConfig struct {
	Port       string
	GinMode    string
	SessionTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// GHLConfig describes the CRM account and the names of its custom fields.
type GHLConfig struct {
	APIKey     string
	LocationID string
	BaseURL    string
	APIVersion string
	Tag        string
	Fields     FieldNames
}

// FieldNames maps each calculator dimension to a CRM custom field key.
type FieldNames struct {
	MonthlyLeads     string
	LeadValue        string
	OperationalCosts string
	AdminHours       string
	MarketingSpend   string
	ChurnRate        string
	AnnualSavings    string
}

// Validate reports whether lead submission can reach the CRM.
func (g GHLConfig) Validate() error {
	if strings.TrimSpace(g.APIKey) == "" || strings.TrimSpace(g.LocationID) == "" {
		return ErrGHLNotConfigured
	}
	return nil
}

// SupabaseConfig points at a hosted PostgREST endpoint for the submissions table.
type SupabaseConfig struct {
	URL   string
	Key   string
	Table string
}

func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.Key != ""
}

// DatabaseConfig is a direct Postgres connection, used instead of Supabase REST.
type DatabaseConfig struct {
	URL string
}

func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig enables the shared session store when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

var envKeys = map[string]string{
	"server.port":               "PORT",
	"server.gin_mode":           "GIN_MODE",
	"server.session_ttl":        "SESSION_TTL",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
	"ghl.api_key":               "GHL_API_KEY",
	"ghl.location_id":           "GHL_LOCATION_ID",
	"ghl.base_url":              "GHL_BASE_URL",
	"ghl.api_version":           "GHL_API_VERSION",
	"ghl.tag":                   "GHL_TAG",
	"ghl.fields.monthly_leads":  "GHL_FIELD_MONTHLY_LEADS",
	"ghl.fields.lead_value":     "GHL_FIELD_LEAD_VALUE",
	"ghl.fields.operational":    "GHL_FIELD_OPERATIONAL_COSTS",
	"ghl.fields.admin_hours":    "GHL_FIELD_ADMIN_HOURS",
	"ghl.fields.marketing":      "GHL_FIELD_MARKETING_SPEND",
	"ghl.fields.churn_rate":     "GHL_FIELD_CHURN_RATE",
	"ghl.fields.annual_savings": "GHL_FIELD_ANNUAL_SAVINGS",
	"supabase.url":              "SUPABASE_URL",
	"supabase.key":              "SUPABASE_KEY",
	"supabase.table":            "SUPABASE_TABLE",
	"database.url":              "DATABASE_URL",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"toolkit_url":               "TOOLKIT_URL",
	"booking_url":               "BOOKING_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.session_ttl", 2*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ghl.base_url", "https://rest.gohighlevel.com")
	v.SetDefault("ghl.api_version", "2021-07-28")
	v.SetDefault("ghl.tag", "profit-calculator-submission")
	v.SetDefault("ghl.fields.monthly_leads", "monthly_leads")
	v.SetDefault("ghl.fields.lead_value", "lead_value")
	v.SetDefault("ghl.fields.operational", "operational_costs")
	v.SetDefault("ghl.fields.admin_hours", "admin_hours")
	v.SetDefault("ghl.fields.marketing", "marketing_spend")
	v.SetDefault("ghl.fields.churn_rate", "churn_rate")
	v.SetDefault("ghl.fields.annual_savings", "annual_savings")
	v.SetDefault("supabase.table", "submissions")
	v.SetDefault("redis.db", 0)
	v.SetDefault("toolkit_url", "https://savvyaiassist.com/toolkit")
	v.SetDefault("booking_url", "https://pro.automationstation.io/widget/bookings/savvy-ai")
}

// LoadConfig reads configuration from environment variables.
// Nothing is validated here; each feature checks its own section when used.
func LoadConfig() *Config {
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:       v.GetString("server.port"),
			GinMode:    v.GetString("server.gin_mode"),
			SessionTTL: v.GetDuration("server.session_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		GHL: GHLConfig{
			APIKey:     v.GetString("ghl.api_key"),
			LocationID: v.GetString("ghl.location_id"),
			BaseURL:    strings.TrimRight(v.GetString("ghl.base_url"), "/"),
			APIVersion: v.GetString("ghl.api_version"),
			Tag:        v.GetString("ghl.tag"),
			Fields: FieldNames{
				MonthlyLeads:     v.GetString("ghl.fields.monthly_leads"),
				LeadValue:        v.GetString("ghl.fields.lead_value"),
				OperationalCosts: v.GetString("ghl.fields.operational"),
				AdminHours:       v.GetString("ghl.fields.admin_hours"),
				MarketingSpend:   v.GetString("ghl.fields.marketing"),
				ChurnRate:        v.GetString("ghl.fields.churn_rate"),
				AnnualSavings:    v.GetString("ghl.fields.annual_savings"),
			},
		},
		Supabase: SupabaseConfig{
			URL:   strings.TrimRight(v.GetString("supabase.url"), "/"),
			Key:   v.GetString("supabase.key"),
			Table: v.GetString("supabase.table"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		ToolkitURL: v.GetString("toolkit_url"),
		BookingURL: v.GetString("booking_url"),
	}
}
