// stkpush-relay/internal/config/config.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	perr "github.com/example/stkpush-relay/pkg/errors"
)

const DefaultGatewayURL = "https://backend.payhero.co.ke/api/v2/payments"

// Config is assembled once at startup and handed to every component.
type Config struct {
	HTTPAddr string
	Region   string

	GatewayURL      string
	GatewayUsername string
	GatewayPassword string
	ChannelID       int
	Provider        string
	CallbackURL     string
	GatewayTimeout  time.Duration

	ReferencePrefix string
	PhonePrefix     string
	Currency        string
	PaymentType     string

	ProbePhone       string
	ProbeInternetURL string

	KafkaBrokers     []string
	KafkaLedgerTopic string
	KafkaSMSTopic    string
}

// Load reads .env (when present) and the process environment. Credentials have
// no defaults: a missing username, password or account id is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REGION", "unknown")
	v.SetDefault("PAYHERO_API_URL", DefaultGatewayURL)
	v.SetDefault("PAYHERO_PROVIDER", "m-pesa")
	v.SetDefault("GATEWAY_TIMEOUT", "30s")
	v.SetDefault("REFERENCE_PREFIX", "NYOTA")
	v.SetDefault("PHONE_PREFIX", "254")
	v.SetDefault("CURRENCY", "KES")
	v.SetDefault("PAYMENT_TYPE", "nyota_loan")
	v.SetDefault("PROBE_PHONE", "254700000000")
	v.SetDefault("PROBE_INTERNET_URL", "https://www.google.com")
	v.SetDefault("KAFKA_LEDGER_TOPIC", "payments.callbacks")
	v.SetDefault("KAFKA_SMS_TOPIC", "sms.outbound")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		Region:           v.GetString("REGION"),
		GatewayURL:       v.GetString("PAYHERO_API_URL"),
		GatewayUsername:  strings.TrimSpace(v.GetString("PAYHERO_USERNAME")),
		GatewayPassword:  v.GetString("PAYHERO_PASSWORD"),
		Provider:         v.GetString("PAYHERO_PROVIDER"),
		CallbackURL:      v.GetString("PAYHERO_CALLBACK_URL"),
		ReferencePrefix:  v.GetString("REFERENCE_PREFIX"),
		PhonePrefix:      v.GetString("PHONE_PREFIX"),
		Currency:         v.GetString("CURRENCY"),
		PaymentType:      v.GetString("PAYMENT_TYPE"),
		ProbePhone:       v.GetString("PROBE_PHONE"),
		ProbeInternetURL: v.GetString("PROBE_INTERNET_URL"),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaLedgerTopic: v.GetString("KAFKA_LEDGER_TOPIC"),
		KafkaSMSTopic:    v.GetString("KAFKA_SMS_TOPIC"),
	}

	var missing []string
	if cfg.GatewayUsername == "" {
		missing = append(missing, "PAYHERO_USERNAME")
	}
	if cfg.GatewayPassword == "" {
		missing = append(missing, "PAYHERO_PASSWORD")
	}
	rawChannel := strings.TrimSpace(v.GetString("PAYHERO_ACCOUNT_ID"))
	if rawChannel == "" {
		missing = append(missing, "PAYHERO_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return nil, perr.New(perr.CodeConfigMissing, strings.Join(missing, ", ")+" must be set")
	}

	channel, err := strconv.Atoi(rawChannel)
	if err != nil || channel <= 0 {
		return nil, perr.Wrap(perr.CodeConfigInvalid, fmt.Sprintf("PAYHERO_ACCOUNT_ID %q is not a positive integer", rawChannel), err)
	}
	cfg.ChannelID = channel

	timeout, err := time.ParseDuration(v.GetString("GATEWAY_TIMEOUT"))
	if err != nil || timeout <= 0 {
		return nil, perr.Wrap(perr.CodeConfigInvalid, "GATEWAY_TIMEOUT must be a positive duration", err)
	}
	cfg.GatewayTimeout = timeout

	return cfg, nil
}

// KafkaEnabled reports whether callback records go to Kafka instead of the log.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Worker configures cmd/sms-worker, which needs Kafka but no gateway credentials.
type Worker struct {
	KafkaBrokers []string
	SMSTopic     string
	GroupID      string
}

func LoadWorker() (*Worker, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	v.SetDefault("SMS_WORKER_GROUP", "sms-worker")

	w := &Worker{
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		SMSTopic:     v.GetString("KAFKA_SMS_TOPIC"),
		GroupID:      v.GetString("SMS_WORKER_GROUP"),
	}
	if len(w.KafkaBrokers) == 0 {
		return nil, perr.New(perr.CodeConfigMissing, "KAFKA_BROKERS must be set")
	}
	return w, nil
}
