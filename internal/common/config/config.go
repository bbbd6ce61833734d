package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required"`
		// Shared secret expected on collaborator event endpoints.
		CollaboratorToken string `env:"COLLABORATOR_TOKEN" envDefault:""`
	}

	Reminders struct {
		// Baseline cadence for non-premium users, minutes.
		FreeIntervalMin int `env:"FREE_INTERVAL_MIN" envDefault:"60"`
		// Cadences a premium user may pick from.
		PremiumIntervalsMin []int `env:"PREMIUM_INTERVALS_MIN" envDefault:"30,45,60" envSeparator:","`
		// How often the scheduler scans active users.
		TickInterval time.Duration `env:"SCHEDULER_TICK_INTERVAL" envDefault:"15s"`
	}

	Sessions struct {
		// Unacknowledged sessions expire this long after issuance. Must
		// exceed the longest expected completion duration in the catalog.
		GraceWindow time.Duration `env:"SESSION_GRACE_WINDOW" envDefault:"10m"`
		// How often the expiry sweeper scans pending sessions.
		SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"30s"`
	}

	Scoring struct {
		// Completions faster than RejectRatio*expected are rejected outright.
		RejectRatio float64 `env:"ANTICHEAT_REJECT_RATIO" envDefault:"0.3333"`
		// A success more than StreakGapFactor*interval after the previous
		// one restarts the streak.
		StreakGapFactor int  `env:"STREAK_GAP_FACTOR" envDefault:"2"`
		StreakBonus     bool `env:"STREAK_BONUS_ENABLED" envDefault:"false"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Ignore a missing .env file; in production the variables are
		// set directly on the environment.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
