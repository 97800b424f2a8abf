package check

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/sqlshift/sqlshift/cmd/sqlshift/config"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"github.com/sqlshift/sqlshift/pkg/providers/sqlserver"
	"github.com/sqlshift/sqlshift/pkg/worker/tasks"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

func CheckCommand() *cobra.Command {
	var transferParams string
	checkCommand := &cobra.Command{
		Use:     "check",
		Short:   "Check that a transfer would get past its preflight phase",
		Example: "./sqlshift check --transfer ./transfer.yaml",
		Args:    cobra.MatchAll(cobra.ExactArgs(0)),
		RunE:    run(&transferParams),
	}
	checkCommand.Flags().StringVar(&transferParams, "transfer", "./transfer.yaml", "path to yaml file with transfer configuration")
	return checkCommand
}

func run(transferYaml *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		transfer, err := config.TransferFromYaml(transferYaml)
		if err != nil {
			return xerrors.Errorf("unable to load transfer: %w", err)
		}
		return RunCheck(cmd.Context(), transfer)
	}
}

// RunCheck walks the same preflight a copy run does, without moving a row:
// probe both endpoints, enforce the safety mode, resolve the table list and
// verify every table exists on both sides.
func RunCheck(ctx context.Context, transfer *model.Transfer) error {
	source, err := openEndpoint(ctx, "source", transfer.Source)
	if err != nil {
		return xerrors.Errorf("source check failed: %w", err)
	}
	defer source.Close()
	target, err := openEndpoint(ctx, "target", transfer.Target)
	if err != nil {
		return xerrors.Errorf("target check failed: %w", err)
	}
	defer target.Close()

	if err := tasks.CheckSourceSafety(ctx, source, transfer.SafetyCheck); err != nil {
		return xerrors.Errorf("safety check failed: %w", err)
	}

	tableList, err := tasks.ResolveTables(ctx, source, transfer.Tables)
	if err != nil {
		return xerrors.Errorf("unable to resolve table list: %w", err)
	}
	if err := tasks.ValidateExistence(ctx, source, target, tableList); err != nil {
		return xerrors.Errorf("table validation failed: %w", err)
	}
	for _, table := range tableList {
		logger.Log.Infof("would copy %v", table)
	}
	logger.Log.Infof("transfer is ready to run: %v tables, %v workers", len(tableList), transfer.WorkerCount)
	return nil
}

func openEndpoint(ctx context.Context, side string, params *model.ConnectionParams) (abstract.Storage, error) {
	storage, err := sqlserver.NewStorage(params)
	if err != nil {
		return nil, xerrors.Errorf("unable to open storage: %w", err)
	}
	if err := storage.Probe(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}
	readOnly, err := storage.DatabaseIsReadOnly(ctx)
	if err != nil {
		_ = storage.Close()
		return nil, xerrors.Errorf("unable to read updateability: %w", err)
	}
	isSnapshot, err := storage.DatabaseIsSnapshot(ctx)
	if err != nil {
		_ = storage.Close()
		return nil, xerrors.Errorf("unable to read snapshot status: %w", err)
	}
	logger.Log.Infof("%s endpoint %v is reachable (read_only=%v, snapshot=%v)", side, params, readOnly, isSnapshot)
	return storage, nil
}
