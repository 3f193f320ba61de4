package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ai-english-tutor/server/internal/core"
	"github.com/ai-english-tutor/server/internal/tutor/memory"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/storage"
	logx "github.com/ai-english-tutor/server/pkg/logger"
	pkgredis "github.com/ai-english-tutor/server/pkg/redis"
)

// cliConfig is read from the environment; flags override a few fields.
type cliConfig struct {
	ServerURL  string        `envconfig:"TUTOR_SERVER_URL" default:"http://localhost:3000"`
	StorageDir string        `envconfig:"TUTOR_STORAGE_DIR"`
	Language   string        `envconfig:"TUTOR_LANGUAGE" default:"hindi"`
	Timeout    time.Duration `envconfig:"TUTOR_TIMEOUT" default:"60s"`
	// Profile namespaces the Redis keys when the profile is kept in Redis.
	Profile string `envconfig:"TUTOR_PROFILE" default:"default"`

	Redis pkgredis.Config

	// Direct mode calls the providers from this process.
	Providers  model.ProviderConfig
	Generation model.GenerationConfig
	Gateway    model.GatewayConfig

	Memory memory.Tuning
}

type app struct {
	cfg   cliConfig
	debug bool
	rdb   *redis.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		logx.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "tutor",
		Short:         "Practice English conversations with an AI tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.Init(logx.LoggerOpts{Environment: core.Development, Output: cmd.ErrOrStderr()})
			if a.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}

			if err := godotenv.Load(".env"); err != nil {
				logx.Debug().Err(err).Msg("no .env file loaded")
			}
			return envconfig.Process("", &a.cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.rdb == nil {
				return nil
			}
			err := a.rdb.Close()
			a.rdb = nil
			return err
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newChatCmd(a))
	rootCmd.AddCommand(newScenariosCmd(a))
	rootCmd.AddCommand(newWordsCmd(a))
	rootCmd.AddCommand(newMemoryCmd(a))

	return rootCmd
}

func (a *app) storageDir() (string, error) {
	if a.cfg.StorageDir != "" {
		return a.cfg.StorageDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "ai-english-tutor"), nil
}

// openStore opens the profile backend, Redis when REDIS_URL is set and a
// local directory otherwise, and the memory store over it.
func (a *app) openStore(ctx context.Context) (storage.KV, *memory.Store, error) {
	var kv storage.KV
	if a.cfg.Redis.Enabled() {
		if a.rdb == nil {
			rdb, err := a.cfg.Redis.New(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("connect to redis: %w", err)
			}
			a.rdb = rdb
		}
		kv = storage.NewRedisStore(a.rdb, a.cfg.Profile, 0)
	} else {
		dir, err := a.storageDir()
		if err != nil {
			return nil, nil, err
		}
		fs, err := storage.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		kv = fs
	}
	return kv, memory.NewStore(kv, memory.WithTuning(a.cfg.Memory)), nil
}
