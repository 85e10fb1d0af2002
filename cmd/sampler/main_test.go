package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosample/domain/sampling"
	"gosample/internal/config"
	"gosample/internal/errors"
)

func writeLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("Invoice No.,Amount\nINV-1,100\nINV-2,250\n"), 0o600))
	return path
}

func runCommand(cmd *cobra.Command, args ...string) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestSamplingConfig_PassesMethodThrough(t *testing.T) {
	var flags samplingFlags
	cmd := &cobra.Command{Use: "design"}
	flags.register(cmd)
	require.NoError(t, cmd.Flags().Set("method", "block"))
	require.NoError(t, cmd.Flags().Set("tolerable", "5000"))

	sc := flags.samplingConfig(cmd, &config.Config{Sampling: config.SamplingConfig{ConfidenceLevel: 0.9}})

	assert.Equal(t, sampling.Method("block"), sc.Method)
	assert.Equal(t, 0.9, sc.ConfidenceLevel)
	assert.Equal(t, 5000.0, sc.TolerableMisstatement)
	assert.Nil(t, sc.RandomSeed)
}

func TestDesignCommand_UnknownMethodIsConfigError(t *testing.T) {
	err := runCommand(newDesignCmd(), writeLedger(t), "--method", "block", "--tolerable", "1000")

	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "block")
}

func TestDesignCommand_NonFiniteTolerableIsConfigError(t *testing.T) {
	err := runCommand(newDesignCmd(), writeLedger(t), "--tolerable", "NaN")

	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestDesignCommand_MissingFileIsInputError(t *testing.T) {
	err := runCommand(newDesignCmd(), filepath.Join(t.TempDir(), "missing.csv"), "--tolerable", "1000")

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "missing.csv")
}
