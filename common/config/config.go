// Package config holds connection settings shared by loadmap processes.
// Each struct carries defaults set by the caller; LoadFromEnv overrides
// whatever the environment provides under a key prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// DatabaseConfig postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// RedisConfig redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT broker settings
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// GetDSN returns a lib/pq URL DSN; credentials are escaped.
func (c *DatabaseConfig) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoadFromEnv reads <prefix>_HOST, _PORT, _USER, _PASSWORD, _NAME, _SSLMODE,
// _MAX_CONNS and _MAX_IDLE.
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	env := envReader(prefix)
	env.str("HOST", &c.Host)
	env.int("PORT", &c.Port)
	env.str("USER", &c.User)
	env.str("PASSWORD", &c.Password)
	env.str("NAME", &c.Database)
	env.str("SSLMODE", &c.SSLMode)
	env.int("MAX_CONNS", &c.MaxConns)
	env.int("MAX_IDLE", &c.MaxIdle)
}

// LoadFromEnv reads <prefix>_ADDR, _PASSWORD and _DB.
func (c *RedisConfig) LoadFromEnv(prefix string) {
	env := envReader(prefix)
	env.str("ADDR", &c.Addr)
	env.str("PASSWORD", &c.Password)
	env.int("DB", &c.DB)
}

// LoadFromEnv reads <prefix>_BROKER, _CLIENT_ID, _USERNAME, _PASSWORD and
// _QOS. A QoS outside 0..2 is ignored.
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	env := envReader(prefix)
	env.str("BROKER", &c.Broker)
	env.str("CLIENT_ID", &c.ClientID)
	env.str("USERNAME", &c.Username)
	env.str("PASSWORD", &c.Password)
	qos := int(c.QoS)
	env.int("QOS", &qos)
	if qos >= 0 && qos <= 2 {
		c.QoS = byte(qos)
	}
}

type envReader string

func (p envReader) lookup(key string) (string, bool) {
	v := os.Getenv(string(p) + "_" + key)
	return v, v != ""
}

func (p envReader) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

// int leaves dst unchanged when the value does not parse.
func (p envReader) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
