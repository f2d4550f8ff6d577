// internal/workers/membership/recommend-coupons/config.go
package recommendcoupons

import "time"

type Config struct {
	Timeout              time.Duration
	IncludeCalendarEvent bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
