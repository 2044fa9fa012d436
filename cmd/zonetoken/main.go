package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/zonetoken/internal/config"
	"github.com/dropDatabas3/zonetoken/internal/decoder"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
)

// Exit codes de decode: 1 token inválido, 2 falla transitoria (reintentar).
const (
	exitInvalid   = 1
	exitRetryable = 2
)

type rootOpts struct {
	configPath string
	envFile    string
	cfg        *config.Config
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	_ = logger.Sync()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "error:", err)
	var de *decoder.Error
	if errors.As(err, &de) {
		fmt.Fprintf(os.Stderr, "kind=%s retryable=%t\n", de.Kind, de.Retryable())
		if de.Retryable() {
			return exitRetryable
		}
	}
	return exitInvalid
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{configPath: os.Getenv(config.EnvPrefix + "CONFIG")}

	root := &cobra.Command{
		Use:           "zonetoken",
		Short:         "Decodifica y valida tokens de un proveedor de identidad multi-tenant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(opts.envFile); err != nil {
				return err
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "zonetoken"})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "Ruta al YAML de config (env ZONETOKEN_CONFIG)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Archivo .env a cargar antes de leer la config")

	root.AddCommand(
		newRouteCmd(),
		newDecodeCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// loadEnv: con --env-file explícito un error es fatal; sin él, .env es opcional.
// godotenv no pisa variables ya definidas.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	_ = godotenv.Load(".env")
	return nil
}
