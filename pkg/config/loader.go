package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env`
// tags. Services compose this with their own validate() step.
//
// Example:
//
//	type Config struct {
//	    HTTPPort  int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	    RedisAddr string   `env:"REDIS_ADDR" envDefault:"localhost:6379"`
//	    Brokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment config: %w", err)
	}
	return nil
}
