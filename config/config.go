package config

import (
	"strings"
	"time"
)

// Config collects every runtime knob of the commerce server. Values are
// parsed from the environment with the COMMERCE prefix via ardanlabs/conf.
type Config struct {
	Web      Web
	DB       DB
	Session  Session
	Locale   Locale
	YooMoney YooMoney
	Stripe   Stripe
	Paypal   Paypal
	Email    Email
	Cors     Cors
	Rate     Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	Production      bool          `conf:"default:false"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:commerce"`
	DisableTLS bool   `conf:"default:true"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

// Locale lists the locales totals are snapshotted in. Default is always
// included in order totals even when the request carries another locale.
type Locale struct {
	Default   string `conf:"default:ru"`
	Supported string `conf:"default:ru;en"`
}

func (l Locale) List() []string {
	return strings.Split(l.Supported, ";")
}

// Resolve returns the requested locale when supported, else the default.
func (l Locale) Resolve(requested string) string {
	for _, loc := range l.List() {
		if loc == requested {
			return loc
		}
	}
	return l.Default
}

type YooMoney struct {
	Secret string `conf:"mask"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
}

type Paypal struct {
	ClientID  string
	Secret    string `conf:"mask"`
	URL       string `conf:"default:https://api.sandbox.paypal.com"`
	WebhookID string
}

type Email struct {
	Host     string
	Port     string `conf:"default:587"`
	Address  string
	Password string `conf:"mask"`
	Sender   string `conf:"default:orders@flow-masters.ru"`
}

type Cors struct {
	Origin string
}

type Rate struct {
	Burst    int           `conf:"default:20"`
	Expiry   time.Duration `conf:"default:30m"`
	LimitRPS float64       `conf:"default:10"`
}
