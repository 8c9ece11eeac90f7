package config

import "github.com/spf13/viper"

const (
	liveProcessURL    = "https://www.payfast.co.za/eng/process"
	sandboxProcessURL = "https://sandbox.payfast.co.za/eng/process"
)

type Config struct {
	CheckoutConfig     ServiceConfig
	PayFast            PayFastConfig
	HTTPAddr           string
	KafkaHost          string
	PaymentEventsTopic string
}

type ServiceConfig struct {
	Name         string
	MigrationDir string
	DatabaseDSN  string
}

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	Sandbox     bool
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// ProcessURL is the gateway form target, switched by the sandbox flag.
func (p PayFastConfig) ProcessURL() string {
	if p.Sandbox {
		return sandboxProcessURL
	}
	return liveProcessURL
}

var DefaultConfig = Config{
	CheckoutConfig: ServiceConfig{
		Name:         "checkout",
		MigrationDir: "migration/checkout",
		DatabaseDSN:  "root:1@tcp(localhost:3306)/ikhaya_checkout?parseTime=true",
	},
	PayFast: PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Sandbox:     true,
		ReturnURL:   "http://localhost:8080/payment/return",
		CancelURL:   "http://localhost:8080/payment/cancel",
		NotifyURL:   "http://localhost:8080/payfast/notify",
	},
	HTTPAddr:           ":8080",
	KafkaHost:          "localhost:29092",
	PaymentEventsTopic: "PAYMENT_EVENTS_TOPIC",
}

// Load returns DefaultConfig with environment overrides applied. Gateway
// credentials are never persisted anywhere else.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("checkout")
	v.AutomaticEnv()

	conf := DefaultConfig
	if s := v.GetString("database_dsn"); s != "" {
		conf.CheckoutConfig.DatabaseDSN = s
	}
	if s := v.GetString("http_addr"); s != "" {
		conf.HTTPAddr = s
	}
	if s := v.GetString("kafka_host"); s != "" {
		conf.KafkaHost = s
	}
	if s := v.GetString("payment_events_topic"); s != "" {
		conf.PaymentEventsTopic = s
	}
	if s := v.GetString("payfast_merchant_id"); s != "" {
		conf.PayFast.MerchantID = s
	}
	if s := v.GetString("payfast_merchant_key"); s != "" {
		conf.PayFast.MerchantKey = s
	}
	if s := v.GetString("payfast_passphrase"); s != "" {
		conf.PayFast.Passphrase = s
	}
	if v.IsSet("payfast_sandbox") {
		conf.PayFast.Sandbox = v.GetBool("payfast_sandbox")
	}
	if s := v.GetString("payfast_return_url"); s != "" {
		conf.PayFast.ReturnURL = s
	}
	if s := v.GetString("payfast_cancel_url"); s != "" {
		conf.PayFast.CancelURL = s
	}
	if s := v.GetString("payfast_notify_url"); s != "" {
		conf.PayFast.NotifyURL = s
	}
	return conf
}
