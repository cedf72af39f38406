package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"goa.design/clue/log"
	"goa.design/pulse/rmap"

	grok "github.com/grokrpc/grok-go"
	"github.com/grokrpc/grok-go/runtime/config"
)

// rateLimitMapName names the replicated map holding shared budgets.
const rateLimitMapName = "grok-ratelimit"

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	model      string
	timeout    time.Duration
	debug      bool
	redisURL   string
	tpm        float64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "grok",
		Short:         "Command-line client for the xAI Grok API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.debug {
				ctx := log.Context(cmd.Context(), log.WithDebug())
				log.Debugf(ctx, "debug logs enabled")
				cmd.SetContext(ctx)
			}
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file (default: environment only)")
	f.StringVar(&opts.model, "model", "", "Model to use (overrides the configured default)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-call timeout (overrides the configured timeout)")
	f.BoolVar(&opts.debug, "debug", false, "Log every gRPC call")
	f.StringVar(&opts.redisURL, "redis", "", "Redis URL used to share the rate limit budget")
	f.Float64Var(&opts.tpm, "tpm", 0, "Tokens-per-minute budget; enables adaptive rate limiting")

	cmd.AddCommand(
		newChatCmd(opts),
		newStreamCmd(opts),
		newDeferredCmd(opts),
		newModelsCmd(opts),
		newKeyCmd(opts),
		newTokenizeCmd(opts),
		newEmbedCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration file or the environment and applies
// the flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return config.Config{}, err
	}
	if o.model != "" {
		cfg.DefaultModel = o.model
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.redisURL != "" {
		cfg.RateLimit.RedisURL = o.redisURL
	}
	if o.tpm > 0 {
		cfg.RateLimit.InitialTPM = o.tpm
	}
	if cfg.RateLimit.RedisURL != "" && cfg.RateLimit.Key == "" {
		cfg.RateLimit.Key = cfg.DefaultModel
	}
	return cfg, cfg.Validate()
}

// connect builds a client and returns a function releasing it along with
// any shared rate limit resources.
func (o *rootOptions) connect(ctx context.Context) (*grok.Client, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var (
		opts    []grok.Option
		closers []func()
	)
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RateLimit.RedisURL != "" && cfg.RateLimit.InitialTPM > 0 {
		rdb := redis.NewClient(redisOptions(cfg.RateLimit.RedisURL))
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				log.Errorf(ctx, err, "close redis")
			}
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			release()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		m, err := rmap.Join(ctx, rateLimitMapName, rdb)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("join rate limit map: %w", err)
		}
		closers = append(closers, m.Close)
		opts = append(opts, grok.WithRateLimitMap(m))
	}

	client, err := grok.New(ctx, cfg, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	closers = append(closers, func() {
		if err := client.Close(); err != nil {
			log.Errorf(ctx, err, "close client")
		}
	})
	return client, release, nil
}

// redisOptions accepts redis:// URLs as well as bare host:port addresses.
func redisOptions(u string) *redis.Options {
	if opts, err := redis.ParseURL(u); err == nil {
		return opts
	}
	return &redis.Options{Addr: u}
}
