package plan

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/config"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"github.com/sqlshift/sqlshift/pkg/providers/sqlserver"
	"github.com/sqlshift/sqlshift/pkg/worker/tasks"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

func PlanCommand() *cobra.Command {
	var transferParams string
	planCommand := &cobra.Command{
		Use:     "plan",
		Short:   "Resolve the table list and print the copy plan without copying",
		Example: "./sqlshift plan --transfer ./transfer.yaml",
		Args:    cobra.MatchAll(cobra.ExactArgs(0)),
		RunE:    run(&transferParams),
	}
	planCommand.Flags().StringVar(&transferParams, "transfer", "./transfer.yaml", "path to yaml file with transfer configuration")
	return planCommand
}

func run(transferYaml *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		transfer, err := config.TransferFromYaml(transferYaml)
		if err != nil {
			return xerrors.Errorf("unable to load transfer: %w", err)
		}
		return RunPlan(cmd.Context(), transfer)
	}
}

// RunPlan shows what a copy run would do: which tables resolve, how each one
// splits into tasks. It only talks to the source.
func RunPlan(ctx context.Context, transfer *model.Transfer) error {
	source, err := sqlserver.NewStorage(transfer.Source)
	if err != nil {
		return xerrors.Errorf("unable to open source storage: %w", err)
	}
	defer source.Close()
	if err := source.Probe(ctx); err != nil {
		return xerrors.Errorf("unable to reach source: %w", err)
	}

	tableList, err := tasks.ResolveTables(ctx, source, transfer.Tables)
	if err != nil {
		return xerrors.Errorf("unable to resolve table list: %w", err)
	}
	plan, err := tasks.NewPartitionPlanner(source, transfer.LogicalPartitions).PlanTables(ctx, tableList)
	if err != nil {
		return xerrors.Errorf("unable to plan tables: %w", err)
	}

	for _, task := range plan {
		logger.Log.Infof("%v", task)
	}
	logger.Log.Infof("%v tables would produce %v copy tasks for %v workers", len(tableList), len(plan), transfer.WorkerCount)
	return nil
}
