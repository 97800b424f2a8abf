package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/check"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/copy"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/plan"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/internal/metrics"
	"github.com/sqlshift/sqlshift/pkg/cobraaux"
	"github.com/sqlshift/sqlshift/pkg/serverutil"
	zp "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/log/zap"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

var (
	defaultLogLevel  = "info"
	defaultLogConfig = "console"
)

func main() {
	loggerConfig := newLoggerConfig()
	logger.Log = zap.Must(loggerConfig)
	logLevel := defaultLogLevel
	logConfig := defaultLogConfig
	metricsPort := 9091
	hcPort := 3000
	runProfiler := false

	registry := metrics.NewRegistry()

	rootCommand := &cobra.Command{
		Use:          "sqlshift",
		Short:        "Parallel table copier for SQL Server",
		Example:      "./sqlshift help",
		Version:      getVersionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cmd.SetContext(ctx)

			if runProfiler {
				go serverutil.RunPprof()
			}

			if metricsPort > 0 {
				go func() {
					rootMux := http.NewServeMux()
					rootMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
						ErrorHandling: promhttp.PanicOnError,
					}))
					logger.Log.Infof("metrics server listening on port %v", metricsPort)
					if err := http.ListenAndServe(fmt.Sprintf(":%v", metricsPort), rootMux); err != nil {
						logger.Log.Error("failed to serve metrics", log.Error(err))
					}
				}()
			}

			switch strings.ToLower(logConfig) {
			case "console":
			case "json":
				loggerConfig = zp.NewProductionConfig()
			case "minimal":
				loggerConfig.EncoderConfig = zapcore.EncoderConfig{
					MessageKey: "message",
					LevelKey:   "level",
					// Disable the rest of the fields
					TimeKey:        "",
					NameKey:        "",
					CallerKey:      "",
					FunctionKey:    "",
					StacktraceKey:  "",
					LineEnding:     zapcore.DefaultLineEnding,
					EncodeLevel:    zapcore.CapitalColorLevelEncoder,
					EncodeName:     nil,
					EncodeDuration: nil,
				}
			default:
				return xerrors.Errorf("unsupported value %q for --log-config", logConfig)
			}
			switch strings.ToLower(logLevel) {
			case "panic":
				loggerConfig.Level.SetLevel(zapcore.PanicLevel)
			case "fatal":
				loggerConfig.Level.SetLevel(zapcore.FatalLevel)
			case "error":
				loggerConfig.Level.SetLevel(zapcore.ErrorLevel)
			case "warning":
				loggerConfig.Level.SetLevel(zapcore.WarnLevel)
			case "info":
				loggerConfig.Level.SetLevel(zapcore.InfoLevel)
			case "debug":
				loggerConfig.Level.SetLevel(zapcore.DebugLevel)
			default:
				return xerrors.Errorf("unsupported value %q for --log-level", logLevel)
			}

			logger.Log = zap.Must(loggerConfig)

			go serverutil.RunHealthCheckOnPort(hcPort)
			return nil
		},
	}

	cobraaux.RegisterCommand(rootCommand, copy.CopyCommand(registry))
	cobraaux.RegisterCommand(rootCommand, check.CheckCommand())
	cobraaux.RegisterCommand(rootCommand, plan.PlanCommand())

	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Specifies logging level for output logs (\"panic\", \"fatal\", \"error\", \"warning\", \"info\", \"debug\")")
	rootCommand.PersistentFlags().StringVar(&logConfig, "log-config", defaultLogConfig, "Specifies logging config for output logs (\"console\", \"json\", \"minimal\")")
	rootCommand.PersistentFlags().IntVar(&metricsPort, "metrics-port", 9091, "Port to serve Prometheus metrics on, 0 disables the endpoint")
	rootCommand.PersistentFlags().BoolVar(&runProfiler, "run-profiler", false, "Run go pprof for performance profiles on 8080 port")
	rootCommand.PersistentFlags().IntVar(&hcPort, "health-check-port", 3000, "Port to used as health-check API")

	err := rootCommand.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLoggerConfig() zp.Config {
	cfg := logger.DefaultLoggerConfig(zapcore.InfoLevel)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}
