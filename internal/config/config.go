// Package config reads the YAML file used by microreq to set up a client.
package config

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"

	"github.com/frankli0324/go-microhttp/internal"
	"github.com/frankli0324/go-microhttp/internal/dialer"
	"github.com/frankli0324/go-microhttp/internal/http"
)

type Config struct {
	LogLevel string      `yaml:"log_level"`
	Dial     DialConfig  `yaml:"dial"`
	DNS      DNSConfig   `yaml:"dns"`
	TLS      TLSConfig   `yaml:"tls"`
	Proxy    ProxyConfig `yaml:"proxy"`
	Headers  Headers     `yaml:"headers"` // sent with every request unless the caller sets the same key
}

type DialConfig struct {
	Timeout     Duration  `yaml:"timeout"`
	ReadBuffer  SizeBytes `yaml:"read_buffer"`
	WriteBuffer SizeBytes `yaml:"write_buffer"`
}

type DNSConfig struct {
	Server  string            `yaml:"server"`  // host:port
	Network string            `yaml:"network"` // ip, ip4 or ip6
	Hosts   map[string]string `yaml:"hosts"`
}

type TLSConfig struct {
	Disabled               bool   `yaml:"disabled"`
	AllowPlaintextFallback bool   `yaml:"allow_plaintext_fallback"`
	CAFile                 string `yaml:"ca_file"`
	InsecureSkipVerify     bool   `yaml:"insecure_skip_verify"`
}

type ProxyConfig struct {
	URL            string `yaml:"url"`
	Auth           string `yaml:"auth"` // user:password
	ResolveLocally bool   `yaml:"resolve_locally"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	return &Config{LogLevel: "warn"}
}

// Load reads the file at path. An empty path, or a file that does not exist,
// yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()
	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Read parses a configuration, rejecting unknown keys.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && err != io.EOF {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.DNS.Network {
	case "", "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("dns.network: unknown network %q", c.DNS.Network)
	}
	if c.Proxy.Auth != "" && !strings.Contains(c.Proxy.Auth, ":") {
		return errors.New("proxy.auth: expected user:password")
	}
	return c.Headers.h.Each(func(k, v string) error {
		if !httpguts.ValidHeaderFieldName(k) || !httpguts.ValidHeaderFieldValue(v) {
			return fmt.Errorf("headers: invalid field %q: %q", k, v)
		}
		return nil
	})
}

// CoreDialer builds the dialer described by c.
func (c *Config) CoreDialer(logger *slog.Logger) (*dialer.CoreDialer, error) {
	d := dialer.NewCoreDialer()
	d.Logger = logger
	d.Timeout = c.Dial.Timeout.Duration()
	if c.Dial.ReadBuffer != 0 || c.Dial.WriteBuffer != 0 {
		d.Socket = &dialer.SocketConfig{
			ReadBuffer:  int(c.Dial.ReadBuffer),
			WriteBuffer: int(c.Dial.WriteBuffer),
		}
	}
	d.ResolveConfig = &dialer.ResolveConfig{
		CustomDNSServer: c.DNS.Server,
		Network:         c.DNS.Network,
		StaticHosts:     c.DNS.Hosts,
	}

	if c.TLS.Disabled {
		d.TLS = dialer.NoTLS{}
	} else {
		tc, err := c.tlsConfig()
		if err != nil {
			return nil, err
		}
		d.TLS = dialer.StdTLS{Config: tc}
	}
	d.AllowPlaintextFallback = c.TLS.AllowPlaintextFallback

	if proxy := c.Proxy.URL; proxy != "" {
		if _, err := dialer.Resolve(proxy); err != nil {
			return nil, fmt.Errorf("proxy.url: %w", err)
		}
		d.ProxyConfig.Auth = c.Proxy.Auth
		d.ProxyConfig.ResolveLocally = c.Proxy.ResolveLocally
		d.GetProxy = func(context.Context, *http.Request) (string, error) { return proxy, nil }
	}
	return d, nil
}

func (c *Config) tlsConfig() (*tls.Config, error) {
	tc := &tls.Config{InsecureSkipVerify: c.TLS.InsecureSkipVerify}
	if c.TLS.CAFile == "" {
		return tc, nil
	}
	pem, err := os.ReadFile(c.TLS.CAFile)
	if err != nil {
		return nil, fmt.Errorf("tls.ca_file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("tls.ca_file: no certificates in %s", c.TLS.CAFile)
	}
	tc.RootCAs = pool
	return tc, nil
}

// NewClient returns a client using the dialer and the default headers of c.
func (c *Config) NewClient(logger *slog.Logger) (*internal.Client, error) {
	d, err := c.CoreDialer(logger)
	if err != nil {
		return nil, err
	}
	client := &internal.Client{Logger: logger}
	client.UseDialer(func(dialer.Dialer) dialer.Dialer { return d })
	if c.Headers.Len() > 0 {
		client.Use(c.Headers.middleware())
	}
	return client, nil
}

// Headers is a YAML mapping of header fields that keeps the order of the
// file.
type Headers struct {
	h *http.Header
}

func (h *Headers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: headers must be a mapping", node.Line)
	}
	h.h = &http.Header{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: header %s must be a scalar", v.Line, k.Value)
		}
		h.h.Add(k.Value, v.Value)
	}
	return nil
}

func (h Headers) Len() int { return h.h.Len() }

// Header returns a copy of the configured fields.
func (h Headers) Header() *http.Header { return h.h.Clone() }

func (h Headers) middleware() internal.Middleware {
	return func(next internal.Handler) internal.Handler {
		return func(ctx context.Context, req *http.PreparedRequest) (*http.Response, error) {
			h.h.Each(func(k, v string) error {
				if !req.Header.Has(k) && !req.Preamble.Has(k) && !req.Framing.Has(k) {
					req.Header.Add(k, v)
				}
				return nil
			})
			return next(ctx, req)
		}
	}
}

// SizeBytes is a byte count written as "64KiB", "1MB" or a plain integer.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(i)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

// Duration accepts "1.5s" style strings or a plain number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
