/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind    string
	port    int
	prefix  string
	profile bool
	tlsCert string
	tlsKey  string
	verbose bool
	version bool

	baseTimer   int
	keepalive   time.Duration
	minTimer    int
	playersCap  int
	shrinkStep  int
	tick        time.Duration
	timerShrink bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.baseTimer < 1 {
		return fmt.Errorf("invalid base timer (must be at least 1): %d", c.baseTimer)
	}
	if c.minTimer < 1 || c.minTimer > c.baseTimer {
		return fmt.Errorf("invalid min timer (must be between 1-%d inclusive): %d", c.baseTimer, c.minTimer)
	}
	if c.shrinkStep < 0 {
		return fmt.Errorf("invalid shrink step (must not be negative): %d", c.shrinkStep)
	}
	if c.playersCap < 2 {
		return fmt.Errorf("invalid players cap (must be at least 2): %d", c.playersCap)
	}
	if c.keepalive <= 0 {
		return fmt.Errorf("invalid keepalive (must be positive): %s", c.keepalive)
	}
	if c.tick <= 0 {
		return fmt.Errorf("invalid tick interval (must be positive): %s", c.tick)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// settings is the per-room copy of the game tunables.
func (c *Config) settings() Settings {
	return Settings{
		BaseTimer:          c.baseTimer,
		ShrinkStep:         c.shrinkStep,
		MinTimer:           c.minTimer,
		PlayersCap:         c.playersCap,
		TimerShrinkEnabled: c.timerShrink,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ALIBI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "alibi",
		Short:         "A password-protected party game of secret aliases and timed guesses.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ALIBI_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ALIBI_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ALIBI_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ALIBI_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ALIBI_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ALIBI_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ALIBI_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ALIBI_VERSION)")

	fs.IntVar(&cfg.baseTimer, "base-timer", 15, "seconds allowed per turn (env: ALIBI_BASE_TIMER)")
	fs.DurationVar(&cfg.keepalive, "keepalive", time.Minute, "drop websocket clients that stop answering pings for this long (env: ALIBI_KEEPALIVE)")
	fs.IntVar(&cfg.minTimer, "min-timer", 3, "floor for the chained turn timer, in seconds (env: ALIBI_MIN_TIMER)")
	fs.IntVar(&cfg.playersCap, "players-cap", 12, "maximum players per room (env: ALIBI_PLAYERS_CAP)")
	fs.IntVar(&cfg.shrinkStep, "shrink-step", 3, "seconds removed from the timer after each correct guess (env: ALIBI_SHRINK_STEP)")
	fs.DurationVar(&cfg.tick, "tick", time.Second, "countdown tick interval (env: ALIBI_TICK)")
	fs.BoolVar(&cfg.timerShrink, "timer-shrink", true, "shorten the timer on consecutive correct guesses (env: ALIBI_TIMER_SHRINK)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	_ = fs.MarkHidden("keepalive")
	_ = fs.MarkHidden("tick")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("alibi v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
