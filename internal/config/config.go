package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/httpx"
)

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres" // 经 gorm
	DriverPgx      = "pgx"      // 直接用 pgx 连接池
)

type Config struct {
	Env          string        `yaml:"env"`           // 运行环境：dev 或 prod
	Addr         string        `yaml:"addr"`          // 服务绑定地址，例如 :3001
	JWTSecret    string        `yaml:"jwt_secret"`    // JWT 签名密钥（用于游客身份验证）
	TokenTTL     time.Duration `yaml:"token_ttl"`     // 游客令牌有效期
	AuthRequired bool          `yaml:"auth_required"` // 计时命令是否要求 Bearer 令牌

	// 计时器存储
	StoreDriver  string        `yaml:"store_driver"`
	StorePath    string        `yaml:"store_path"` // file 驱动的目录，或 sqlite 数据库文件
	StoreTimeout time.Duration `yaml:"store_timeout"`

	// 计时器
	TimerKey       string        `yaml:"timer_key"`
	DefaultSeconds int           `yaml:"default_seconds"`
	FrameInterval  time.Duration `yaml:"frame_interval"`

	// 限流与跨域
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	AllowOrigins   string  `yaml:"allow_origins"`
	TrustedProxies string  `yaml:"trusted_proxies"` // 逗号分隔的 IP/CIDR，只有这些来源的 X-Forwarded-For 才采信

	// Postgres 数据库配置
	PGUser string `yaml:"pg_user"` // 数据库用户名
	PGPass string `yaml:"pg_password"`
	PGDB   string `yaml:"pg_database"`
	PGHost string `yaml:"pg_host"` // 数据库服务器地址
	PGPort string `yaml:"pg_port"`
}

// Default 内置默认值
func Default() *Config {
	return &Config{
		Env:            "dev",
		Addr:           ":3001",
		JWTSecret:      "dev-guest-secret", // 开发占位，生产请改成强随机
		TokenTTL:       7 * 24 * time.Hour,
		StoreDriver:    DriverFile,
		StorePath:      "./data",
		StoreTimeout:   2 * time.Second,
		TimerKey:       "timicat_countdown_timer_v1",
		DefaultSeconds: 10,
		FrameInterval:  16 * time.Millisecond,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		PGUser:         "app",
		PGPass:         "app",
		PGDB:           "appdb",
		PGHost:         "localhost",
		PGPort:         "5432",
	}
}

// Load 读取配置
// 优先级：环境变量 > .env 文件 > CONFIG_FILE 指定的 YAML > 默认值
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = get("ENV", c.Env)
	c.Addr = get("ADDR", c.Addr)
	c.JWTSecret = get("JWT_SECRET", c.JWTSecret)
	c.StoreDriver = strings.ToLower(get("STORE_DRIVER", c.StoreDriver))
	c.StorePath = get("STORE_PATH", c.StorePath)
	c.TimerKey = get("TIMER_KEY", c.TimerKey)
	c.AllowOrigins = get("ALLOW_ORIGINS", c.AllowOrigins)
	c.TrustedProxies = get("TRUSTED_PROXIES", c.TrustedProxies)
	c.PGUser = get("PGUSER", c.PGUser)     // PostgreSQL 用户
	c.PGPass = get("PGPASSWORD", c.PGPass) // PostgreSQL 密码
	c.PGDB = get("PGDATABASE", c.PGDB)     // 数据库名
	c.PGHost = get("PGHOST", c.PGHost)     // 数据库服务器地址
	c.PGPort = get("PGPORT", c.PGPort)     // PostgreSQL 默认端口

	var err error
	if c.AuthRequired, err = parseEnv("AUTH_REQUIRED", c.AuthRequired, strconv.ParseBool); err != nil {
		return err
	}
	if c.TokenTTL, err = parseEnv("TOKEN_TTL", c.TokenTTL, time.ParseDuration); err != nil {
		return err
	}
	if c.StoreTimeout, err = parseEnv("STORE_TIMEOUT", c.StoreTimeout, time.ParseDuration); err != nil {
		return err
	}
	if c.FrameInterval, err = parseEnv("FRAME_INTERVAL", c.FrameInterval, time.ParseDuration); err != nil {
		return err
	}
	if c.DefaultSeconds, err = parseEnv("TIMER_DEFAULT_SECONDS", c.DefaultSeconds, strconv.Atoi); err != nil {
		return err
	}
	if c.RateLimitBurst, err = parseEnv("RATE_LIMIT_BURST", c.RateLimitBurst, strconv.Atoi); err != nil {
		return err
	}
	parseFloat := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	if c.RateLimitRPS, err = parseEnv("RATE_LIMIT_RPS", c.RateLimitRPS, parseFloat); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be positive, got %s", c.FrameInterval)
	}
	if c.TimerKey == "" {
		return fmt.Errorf("TIMER_KEY cannot be empty")
	}
	if _, err := httpx.ParseProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES %q: %w", c.TrustedProxies, err)
	}
	return nil
}

// Proxies 可信代理列表；Load 已校验过格式
func (c *Config) Proxies() []netip.Prefix {
	p, _ := httpx.ParseProxies(c.TrustedProxies)
	return p
}

// IsProd 生产环境
func (c *Config) IsProd() bool { return c.Env == "prod" }

func (c *Config) DSN() string {
	// GORM 的 PostgreSQL 驱动 DSN（数据源名称）格式
	// sslmode=disable 用于开发环境（生产环境应改为 require）
	// TimeZone 设置为上海时区，确保数据库时间与应用一致
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		c.PGHost, c.PGUser, c.PGPass, c.PGDB, c.PGPort,
	)
}

// PgxURL pgxpool 使用的连接串
func (c *Config) PgxURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PGUser, c.PGPass),
		Host:     c.PGHost + ":" + c.PGPort,
		Path:     "/" + c.PGDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SQLitePath STORE_PATH 以 .db 结尾时直接作为数据库文件，否则放在该目录下的 timer.db
func (c *Config) SQLitePath() string {
	if strings.HasSuffix(c.StorePath, ".db") {
		return c.StorePath
	}
	return filepath.Join(c.StorePath, "timer.db")
}

// get 从环境变量获取值，如果为空则返回默认值
// 这样可以方便地处理可选配置，避免每个地方都写 if 判断
func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// parseEnv 非字符串配置：未设置时保留当前值，设置了但解析失败报错
func parseEnv[T any](k string, cur T, parse func(string) (T, error)) (T, error) {
	v := os.Getenv(k)
	if v == "" {
		return cur, nil
	}
	out, err := parse(v)
	if err != nil {
		return cur, fmt.Errorf("invalid %s=%q: %w", k, v, err)
	}
	return out, nil
}
