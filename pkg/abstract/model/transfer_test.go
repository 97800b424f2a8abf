package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func validTransfer() *Transfer {
	transfer := &Transfer{
		Source: &ConnectionParams{Host: "src.local", Database: "appdb", User: "ro"},
		Target: &ConnectionParams{Host: "dst.local", Database: "appdb", User: "rw"},
		Tables: []string{"dbo.orders"},
	}
	transfer.WithDefaults()
	return transfer
}

func TestTransferDefaults(t *testing.T) {
	transfer := validTransfer()
	require.Equal(t, DefaultBatchSize, transfer.BatchSize)
	require.Equal(t, DefaultWorkerCount, transfer.WorkerCount)
	require.Equal(t, DefaultLogicalPartitions, transfer.LogicalPartitions)
	require.Equal(t, SafetyCheckNone, transfer.SafetyCheck)
	require.Equal(t, TransferErrorContinue, transfer.OnTransferError)
	require.Equal(t, DefaultPort, transfer.Source.Port)
	require.Equal(t, DefaultAppName, transfer.Target.AppName)
	require.NoError(t, transfer.Validate())
}

func TestTransferBounds(t *testing.T) {
	transfer := validTransfer()
	transfer.BatchSize = 999
	require.Error(t, transfer.Validate())
	transfer.BatchSize = 100000001
	require.Error(t, transfer.Validate())
	transfer.BatchSize = 1000
	require.NoError(t, transfer.Validate())

	transfer.WorkerCount = 0
	require.Error(t, transfer.Validate())
	transfer.WorkerCount = 33
	require.Error(t, transfer.Validate())
	transfer.WorkerCount = 32
	require.NoError(t, transfer.Validate())

	transfer.LogicalPartitions = 33
	require.Error(t, transfer.Validate())
	transfer.LogicalPartitions = 1
	require.NoError(t, transfer.Validate())
}

func TestTransferEnums(t *testing.T) {
	transfer := validTransfer()
	transfer.SafetyCheck = "paranoid"
	require.Error(t, transfer.Validate())
	transfer.SafetyCheck = SafetyCheckSnapshot
	require.NoError(t, transfer.Validate())

	transfer.OnTransferError = "retry"
	require.Error(t, transfer.Validate())
	transfer.OnTransferError = TransferErrorFail
	require.NoError(t, transfer.Validate())
}

func TestTransferRequiredFields(t *testing.T) {
	transfer := validTransfer()
	transfer.Tables = nil
	require.Error(t, transfer.Validate())

	transfer = validTransfer()
	transfer.Source = nil
	require.Error(t, transfer.Validate())

	transfer = validTransfer()
	transfer.Target.Host = ""
	require.Error(t, transfer.Validate())
}

func TestSecretStringNeverLeaks(t *testing.T) {
	params := &ConnectionParams{Host: "h", Database: "d", User: "u", Password: "hunter2"}
	require.NotContains(t, params.String(), "hunter2")
	require.Equal(t, "<masked>", params.Password.String())

	serialized, err := json.Marshal(params)
	require.NoError(t, err)
	require.NotContains(t, string(serialized), "hunter2")
}
