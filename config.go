package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"presentrush/game"
)

type Config struct {
	bind           string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	// play subcommand
	eventKey string
	eventURL string
	name     string
	relay    string
	session  string
	skin     string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func (c *Config) validatePlay() error {
	if c.relay == "" {
		return errors.New("--relay is required")
	}
	if c.session == "" {
		return errors.New("--session is required")
	}
	if c.skin != "" && !game.ValidSkin(game.Skin(c.skin)) {
		return fmt.Errorf("unknown skin %q (valid: %v)", c.skin, game.Skins)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PRESENTRUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "presentrush",
		Short:         "A real-time present-grabbing arena for the terminal, relayed over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PRESENTRUSH_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PRESENTRUSH_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PRESENTRUSH_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PRESENTRUSH_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: PRESENTRUSH_IDLE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PRESENTRUSH_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PRESENTRUSH_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PRESENTRUSH_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PRESENTRUSH_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newPlayCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("presentrush v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "play",
		Short:         "Join a session as a terminal player; the first peer in becomes the host.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validatePlay(); err != nil {
				return err
			}
			return Play(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVar(&cfg.eventKey, "event-key", "", "bearer token for the chaos event service (env: PRESENTRUSH_EVENT_KEY)")
	fs.StringVar(&cfg.eventURL, "event-url", "", "chaos event generation endpoint; empty means local fallback events (env: PRESENTRUSH_EVENT_URL)")
	fs.StringVarP(&cfg.name, "name", "n", "", "display name (env: PRESENTRUSH_NAME)")
	fs.StringVarP(&cfg.relay, "relay", "r", "", "relay address, e.g. play.example.com:8080 (env: PRESENTRUSH_RELAY)")
	fs.StringVarP(&cfg.session, "session", "s", "", "session ID to join (env: PRESENTRUSH_SESSION)")
	fs.StringVar(&cfg.skin, "skin", "", "avatar skin (env: PRESENTRUSH_SKIN)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "display additional output (env: PRESENTRUSH_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}
