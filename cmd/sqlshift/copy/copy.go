package copy

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/config"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"github.com/sqlshift/sqlshift/pkg/providers/sqlserver"
	"github.com/sqlshift/sqlshift/pkg/stats"
	"github.com/sqlshift/sqlshift/pkg/worker/tasks"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

func CopyCommand(registry *prometheus.Registry) *cobra.Command {
	var transferParams string
	copyCommand := &cobra.Command{
		Use:     "copy",
		Short:   "Copy tables between two SQL Server databases",
		Example: "./sqlshift copy --transfer ./transfer.yaml",
		Args:    cobra.MatchAll(cobra.ExactArgs(0)),
		RunE:    run(&transferParams, registry),
	}
	copyCommand.Flags().StringVar(&transferParams, "transfer", "./transfer.yaml", "path to yaml file with transfer configuration")
	return copyCommand
}

func run(transferYaml *string, registry *prometheus.Registry) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		transfer, err := config.TransferFromYaml(transferYaml)
		if err != nil {
			return xerrors.Errorf("unable to load transfer: %w", err)
		}
		return RunCopy(cmd.Context(), transfer, registry)
	}
}

func RunCopy(ctx context.Context, transfer *model.Transfer, registry *prometheus.Registry) error {
	copier := tasks.NewCopier(
		transfer,
		sqlserver.Factory(transfer.Source),
		sqlserver.Factory(transfer.Target),
		stats.NewCopyStats(registry),
	)
	result, err := copier.Copy(ctx)
	if result != nil {
		for _, failed := range result.FailedTasks {
			logger.Log.Error("failed task",
				log.String("task", failed.Task.String()),
				log.Error(failed.Err))
		}
	}
	if err != nil {
		return xerrors.Errorf("copy failed: %w", err)
	}
	return nil
}
