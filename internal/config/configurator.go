package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	APP_PORT      = "APP_PORT"
	APP_HOST      = "APP_HOST"
	APP_LOG_FILE  = "APP_LOG_FILE"
	APP_LOG_LEVEL = "APP_LOG_LEVEL"

	INTAKE_URL             = "INTAKE_URL"
	INTAKE_TIMEOUT_SECONDS = "INTAKE_TIMEOUT_SECONDS"
	INTAKE_MAX_RETRIES     = "INTAKE_MAX_RETRIES"
	INTAKE_REQUIRE_ACK     = "INTAKE_REQUIRE_ACK"

	PAYMENT_REF_MODE      = "PAYMENT_REF_MODE"
	PAYMENT_LINK          = "PAYMENT_LINK"
	MAP_EMBED_URL         = "MAP_EMBED_URL"
	COMPETITION_START     = "COMPETITION_START"
	COMPETITION_TZ        = "COMPETITION_TZ"
	REGISTRATION_OPEN     = "REGISTRATION_OPEN"
	RESULTS_XLSX          = "RESULTS_XLSX"
	RATE_LIMIT_PER_MINUTE = "RATE_LIMIT_PER_MINUTE"

	JAG_DSN = "JAG_DSN"

	// Layout of COMPETITION_START, interpreted in COMPETITION_TZ.
	START_LAYOUT = "2006-01-02T15:04:05"

	PaymentRefStrict  = "strict"
	PaymentRefRelaxed = "relaxed"
)

var errBadPaymentMode = errors.New("PAYMENT_REF_MODE must be strict or relaxed")

type Entity struct {
	App         Application `mapstructure:",squash"`
	Intake      Intake      `mapstructure:",squash"`
	Competition Competition `mapstructure:",squash"`
	Jag         Jaeger      `mapstructure:",squash"`
}

type Application struct {
	Port     string `mapstructure:"APP_PORT"`
	Host     string `mapstructure:"APP_HOST"`
	LogFile  string `mapstructure:"APP_LOG_FILE"`
	LogLevel string `mapstructure:"APP_LOG_LEVEL"`
}

type Intake struct {
	URL            string `mapstructure:"INTAKE_URL"`
	TimeoutSeconds int    `mapstructure:"INTAKE_TIMEOUT_SECONDS"`
	MaxRetries     uint64 `mapstructure:"INTAKE_MAX_RETRIES"`
	RequireAck     bool   `mapstructure:"INTAKE_REQUIRE_ACK"`
}

func (i Intake) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

type Competition struct {
	PaymentRefMode     string `mapstructure:"PAYMENT_REF_MODE"`
	PaymentLink        string `mapstructure:"PAYMENT_LINK"`
	MapEmbedURL        string `mapstructure:"MAP_EMBED_URL"`
	Start              string `mapstructure:"COMPETITION_START"`
	TimeZone           string `mapstructure:"COMPETITION_TZ"`
	RegistrationOpen   bool   `mapstructure:"REGISTRATION_OPEN"`
	ResultsXlsx        string `mapstructure:"RESULTS_XLSX"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// StartTime resolves COMPETITION_START in the configured time zone.
func (c Competition) StartTime() (time.Time, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("StartTime failed: %w", err)
	}

	t, err := time.ParseInLocation(START_LAYOUT, c.Start, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("StartTime failed: %w", err)
	}

	return t, nil
}

type Jaeger struct {
	Dsn string `mapstructure:"JAG_DSN"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(APP_HOST, "0.0.0.0")
	v.SetDefault(APP_PORT, "8080")
	v.SetDefault(APP_LOG_FILE, "./logs/logs.txt")
	v.SetDefault(APP_LOG_LEVEL, "info")

	v.SetDefault(INTAKE_URL, "https://script.google.com/macros/s/AKfycbwySRsWz08jvKXah0L2RSltHN1ALhQ1Y3GNiIFhwnYHncyKBnWrQY1OPZTQB4Oeoj2u/exec")
	v.SetDefault(INTAKE_TIMEOUT_SECONDS, 20)
	v.SetDefault(INTAKE_MAX_RETRIES, 2)
	v.SetDefault(INTAKE_REQUIRE_ACK, true)

	v.SetDefault(PAYMENT_REF_MODE, PaymentRefStrict)
	v.SetDefault(PAYMENT_LINK, "https://www.paypal.com/ncp/payment/TPP6PUX3RNVSA")
	v.SetDefault(MAP_EMBED_URL, "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d2482.90502179144!2d-0.12775838422973384!3d51.50735097963495!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x487604c541d11c9f%3A0x82b99216060c40e5!2sLondon!5e0!3m2!1sen!2suk!4v1628173456789!5m2!1sen!2suk")
	v.SetDefault(COMPETITION_START, "2026-06-01T09:00:00")
	v.SetDefault(COMPETITION_TZ, "Europe/London")
	v.SetDefault(REGISTRATION_OPEN, true)
	v.SetDefault(RESULTS_XLSX, "")
	v.SetDefault(RATE_LIMIT_PER_MINUTE, 6)

	v.SetDefault(JAG_DSN, "")
}

// NewConfig reads the environment, and ./configs/.env as well when CONFIG_FILE=true.
// The returned viper instance is the one to watch for hot reload.
func NewConfig() (*Entity, *viper.Viper, error) {
	readConfigFile, ok := os.LookupEnv("CONFIG_FILE")
	var readFile bool
	var err error
	if ok {
		readFile, err = strconv.ParseBool(readConfigFile)
		if err != nil {
			return nil, nil, fmt.Errorf("NewConfig failed: %w", errors.New("Error during env variable parse"))
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AllowEmptyEnv(false)
	v.AutomaticEnv()

	if readFile {
		v.SetConfigFile("./configs/.env")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, nil, fmt.Errorf("NewConfig failed: %w", err)
			}
		}
	}

	config, err := FromViper(v)
	if err != nil {
		return nil, nil, err
	}

	return config, v, nil
}

// FromViper builds and checks the Entity from an already populated viper instance.
func FromViper(v *viper.Viper) (*Entity, error) {
	config := &Entity{}

	// AutomaticEnv keys are invisible to Unmarshal, so every field is read explicitly.
	config.App = Application{
		Port:     v.GetString(APP_PORT),
		Host:     v.GetString(APP_HOST),
		LogFile:  v.GetString(APP_LOG_FILE),
		LogLevel: v.GetString(APP_LOG_LEVEL),
	}

	config.Intake = Intake{
		URL:            v.GetString(INTAKE_URL),
		TimeoutSeconds: v.GetInt(INTAKE_TIMEOUT_SECONDS),
		MaxRetries:     v.GetUint64(INTAKE_MAX_RETRIES),
		RequireAck:     v.GetBool(INTAKE_REQUIRE_ACK),
	}

	config.Competition = Competition{
		PaymentRefMode:     strings.ToLower(v.GetString(PAYMENT_REF_MODE)),
		PaymentLink:        v.GetString(PAYMENT_LINK),
		MapEmbedURL:        v.GetString(MAP_EMBED_URL),
		Start:              v.GetString(COMPETITION_START),
		TimeZone:           v.GetString(COMPETITION_TZ),
		RegistrationOpen:   v.GetBool(REGISTRATION_OPEN),
		ResultsXlsx:        v.GetString(RESULTS_XLSX),
		RateLimitPerMinute: v.GetInt(RATE_LIMIT_PER_MINUTE),
	}

	config.Jag = Jaeger{v.GetString(JAG_DSN)}

	if err := config.check(); err != nil {
		return nil, fmt.Errorf("FromViper failed: %w", err)
	}

	return config, nil
}

func (e *Entity) check() error {
	switch e.Competition.PaymentRefMode {
	case PaymentRefStrict, PaymentRefRelaxed:
	default:
		return errBadPaymentMode
	}

	if e.Intake.URL == "" {
		return errors.New("INTAKE_URL is empty")
	}

	if e.Intake.TimeoutSeconds <= 0 {
		return errors.New("INTAKE_TIMEOUT_SECONDS must be positive")
	}

	if _, err := e.Competition.StartTime(); err != nil {
		return err
	}

	return nil
}
