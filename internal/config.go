package internal

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RunAddress         = "RUN_ADDRESS"
	DatabaseURI        = "DATABASE_URI"
	JWTSecret          = "JWT_SECRET"
	ProfileSourceURL   = "PROFILE_SOURCE_URL"
	ProfileSourceKey   = "PROFILE_SOURCE_KEY"
	SettlementSchedule = "SETTLEMENT_SCHEDULE"
	ToastTTL           = "TOAST_TTL"
	AdminLogins        = "ADMIN_LOGINS"
)

const (
	defaultRunAddress         = "localhost:8080"
	defaultJWTSecret          = "secret"
	defaultSettlementSchedule = "@hourly"
	defaultToastTTL           = 1400 * time.Millisecond
)

// Config is read from flags, falling back to the environment and an optional
// .env file. An empty DatabaseURI runs the service on in-memory storage.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	JWTSecret          string
	ProfileSourceURL   string
	ProfileSourceKey   string
	SettlementSchedule string
	ToastTTL           time.Duration
	AdminLogins        []string
}

func NewConfig() *Config {
	_ = godotenv.Load()

	c := new(Config)
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	c.bind(fs)
	_ = fs.Parse(os.Args[1:])
	return c
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.RunAddress, "a", setEnvOrDefault(RunAddress, defaultRunAddress), "host to listen on")
	fs.StringVar(&c.DatabaseURI, "d", setEnvOrDefault(DatabaseURI, ""), "postgres connection path, empty for in-memory storage")
	fs.StringVar(&c.JWTSecret, "s", setEnvOrDefault(JWTSecret, defaultJWTSecret), "session signing secret")
	fs.StringVar(&c.ProfileSourceURL, "p", setEnvOrDefault(ProfileSourceURL, ""), "remote profile source url")
	fs.StringVar(&c.ProfileSourceKey, "k", setEnvOrDefault(ProfileSourceKey, ""), "remote profile source api key")
	fs.StringVar(&c.SettlementSchedule, "c", setEnvOrDefault(SettlementSchedule, defaultSettlementSchedule), "settlement run cron spec")

	ttl, err := time.ParseDuration(setEnvOrDefault(ToastTTL, defaultToastTTL.String()))
	if err != nil {
		ttl = defaultToastTTL
	}
	fs.DurationVar(&c.ToastTTL, "t", ttl, "toast lifetime")

	c.AdminLogins = splitList(setEnvOrDefault(AdminLogins, ""))
	fs.Func("admins", "comma separated logins provisioned as admin", func(v string) error {
		c.AdminLogins = splitList(v)
		return nil
	})
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setEnvOrDefault(env, def string) string {
	res, e := os.LookupEnv(env)
	if !e {
		res = def
	}
	return res
}
