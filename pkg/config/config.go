package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

type Config struct {
	Global   GlobalConfig   `yaml:"global"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Server   ServerConfig   `yaml:"server"`
	Terminal TerminalConfig `yaml:"terminal"`
	Alert    AlertConfig    `yaml:"alert"`
}

type GlobalConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
	TimeZone     string        `yaml:"time_zone"`
	TimeFormat   string        `yaml:"time_format"`
}

type EndpointConfig struct {
	URL    string            `yaml:"url"`
	Path   string            `yaml:"path"`
	Labels map[string]string `yaml:"labels"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type TerminalConfig struct {
	Quiet     bool `yaml:"quiet"`
	MaxPoints int  `yaml:"max_points"`
}

type AlertConfig struct {
	Enabled           bool          `yaml:"enabled"`
	AreaSqft          int           `yaml:"area_sqft"`
	MinSpacePerPerson int           `yaml:"min_space_per_person"`
	Cooldown          time.Duration `yaml:"cooldown"`
	SendTimeout       time.Duration `yaml:"send_timeout"`
	SMTPHost          string        `yaml:"smtp_host"`
	SMTPPort          int           `yaml:"smtp_port"`
	UseSSL            bool          `yaml:"use_ssl"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	From              string        `yaml:"from"`
	To                []string      `yaml:"to"`
}

func NewConfig() *Config {
	return &Config{}
}

func (c *Config) Validate() error {
	if c.Global.PollInterval < 0 {
		return fmt.Errorf("poll interval (%v) must not be negative", c.Global.PollInterval)
	}
	if c.Global.PollTimeout < 0 {
		return fmt.Errorf("poll timeout (%v) must not be negative", c.Global.PollTimeout)
	}
	interval := c.Global.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	if c.Global.PollTimeout > interval {
		return fmt.Errorf("poll timeout (%v) must be <= poll interval (%v)",
			c.Global.PollTimeout, interval)
	}
	if c.Global.TimeZone != "" {
		if _, err := time.LoadLocation(c.Global.TimeZone); err != nil {
			return fmt.Errorf("unknown time_zone %q: %w", c.Global.TimeZone, err)
		}
	}
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		return fmt.Errorf("endpoint: url is required")
	}
	if c.Terminal.MaxPoints < 0 {
		return fmt.Errorf("terminal: max_points (%d) must not be negative", c.Terminal.MaxPoints)
	}
	if c.Alert.Enabled {
		if err := c.Alert.validate(); err != nil {
			return fmt.Errorf("alert: %w", err)
		}
	}
	return nil
}

func (a *AlertConfig) validate() error {
	if a.AreaSqft < 0 {
		return fmt.Errorf("area_sqft (%d) must not be negative", a.AreaSqft)
	}
	if a.MinSpacePerPerson < 0 {
		return fmt.Errorf("min_space_per_person (%d) must not be negative", a.MinSpacePerPerson)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("cooldown (%v) must not be negative", a.Cooldown)
	}
	if a.SendTimeout < 0 {
		return fmt.Errorf("send_timeout (%v) must not be negative", a.SendTimeout)
	}
	if a.From == "" {
		return fmt.Errorf("from is required")
	}
	if len(a.To) == 0 {
		return fmt.Errorf("no recipients configured")
	}
	return nil
}

const (
	DefaultEndpointPath      = "/crowd_data"
	DefaultPollInterval      = time.Second
	DefaultListen            = ":8080"
	DefaultTimeZone          = "Local"
	DefaultMaxPoints         = 10
	DefaultAreaSqft          = 8
	DefaultMinSpacePerPerson = 4
	DefaultAlertCooldown     = 300 * time.Second
	DefaultAlertSendTimeout  = 30 * time.Second
	DefaultSMTPHost          = "smtp.gmail.com"
	DefaultSMTPPort          = 587
)

// Process returns a copy with every default filled in and the endpoint
// url joined with its path.
func (c *Config) Process() (*Config, error) {
	out := *c

	if out.Global.PollInterval == 0 {
		out.Global.PollInterval = DefaultPollInterval
	}
	if out.Global.PollTimeout == 0 {
		out.Global.PollTimeout = out.Global.PollInterval
	}
	if out.Global.TimeZone == "" {
		out.Global.TimeZone = DefaultTimeZone
	}

	endpointPath := out.Endpoint.Path
	if endpointPath == "" {
		endpointPath = DefaultEndpointPath
	}
	out.Endpoint.Path = endpointPath
	target, err := c.buildTargetUrl(out.Endpoint.URL, endpointPath)
	if err != nil {
		return nil, fmt.Errorf("endpoint: invalid url %q: %w", out.Endpoint.URL, err)
	}
	out.Endpoint.URL = target
	labels := make(map[string]string, len(c.Endpoint.Labels))
	for k, v := range c.Endpoint.Labels {
		labels[k] = v
	}
	out.Endpoint.Labels = labels

	if out.Server.Listen == "" {
		out.Server.Listen = DefaultListen
	}
	if out.Terminal.MaxPoints == 0 {
		out.Terminal.MaxPoints = DefaultMaxPoints
	}

	if out.Alert.AreaSqft == 0 {
		out.Alert.AreaSqft = DefaultAreaSqft
	}
	if out.Alert.MinSpacePerPerson == 0 {
		out.Alert.MinSpacePerPerson = DefaultMinSpacePerPerson
	}
	if out.Alert.Cooldown == 0 {
		out.Alert.Cooldown = DefaultAlertCooldown
	}
	if out.Alert.SendTimeout == 0 {
		out.Alert.SendTimeout = DefaultAlertSendTimeout
	}
	if out.Alert.SMTPHost == "" {
		out.Alert.SMTPHost = DefaultSMTPHost
	}
	if out.Alert.SMTPPort == 0 {
		out.Alert.SMTPPort = DefaultSMTPPort
	}
	out.Alert.To = append([]string(nil), c.Alert.To...)
	return &out, nil
}

// Location resolves time_zone, "Local" and "" mean the host zone.
func (g GlobalConfig) Location() (*time.Location, error) {
	if g.TimeZone == "" || g.TimeZone == DefaultTimeZone {
		return time.Local, nil
	}
	return time.LoadLocation(g.TimeZone)
}

func (c *Config) buildTargetUrl(target, endpointPath string) (string, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	u.Path = path.Join(u.Path, endpointPath)
	return u.String(), nil
}
