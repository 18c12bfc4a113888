package mysql

import (
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Builder edits MySQL DSNs through the driver's own Config type, so every
// parameter the driver understands survives a Parse/String round trip.
type Builder struct {
	cfg *mysql.Config
}

func (b *Builder) config() *mysql.Config {
	if b.cfg == nil {
		b.cfg = mysql.NewConfig()
	}
	return b.cfg
}

// Parse loads a DSN in the driver's "user:pass@net(addr)/db?param=v" form.
func (b *Builder) Parse(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	b.cfg = cfg
	return nil
}

// Set adds or replaces a key. The component keys user, password, host, port,
// and database address Config fields; anything else becomes a DSN parameter.
func (b *Builder) Set(key, value string) {
	cfg := b.config()
	switch dbcapabilities.NormalizeKey(key) {
	case "user":
		cfg.User = value
	case "password":
		cfg.Passwd = value
	case "host":
		_, port := splitAddr(cfg.Addr)
		cfg.Addr = joinAddr(value, port)
		if cfg.Net == "" {
			cfg.Net = "tcp"
		}
	case "port":
		host, _ := splitAddr(cfg.Addr)
		cfg.Addr = joinAddr(host, value)
		if cfg.Net == "" {
			cfg.Net = "tcp"
		}
	case "database":
		cfg.DBName = value
	default:
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = value
	}
}

// Get returns a component or DSN parameter by normalized key.
func (b *Builder) Get(key string) (string, bool) {
	cfg := b.config()
	switch dbcapabilities.NormalizeKey(key) {
	case "user":
		return cfg.User, cfg.User != ""
	case "password":
		return cfg.Passwd, cfg.Passwd != ""
	case "host":
		host, _ := splitAddr(cfg.Addr)
		return host, host != ""
	case "port":
		_, port := splitAddr(cfg.Addr)
		return port, port != ""
	case "database":
		return cfg.DBName, cfg.DBName != ""
	}
	norm := dbcapabilities.NormalizeKey(key)
	for k, v := range cfg.Params {
		if dbcapabilities.NormalizeKey(k) == norm {
			return v, true
		}
	}
	return "", false
}

// String renders the DSN, credentials included.
func (b *Builder) String() string {
	return b.config().FormatDSN()
}

// Redacted renders the DSN with the password and sensitive parameter values
// replaced, for logs.
func (b *Builder) Redacted() string {
	cfg := b.config().Clone()
	if cfg.Passwd != "" {
		cfg.Passwd = "*****"
	}
	for k := range cfg.Params {
		if dbcapabilities.IsSensitiveKey(k) {
			cfg.Params[k] = "*****"
		}
	}
	return cfg.FormatDSN()
}

func splitAddr(addr string) (host, port string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, ""
	}
	return host, port
}

func joinAddr(host, port string) string {
	if port == "" {
		if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}
