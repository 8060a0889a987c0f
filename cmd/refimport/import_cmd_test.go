package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/opsboard/internal/constants"
)

func writeCustomerFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nAcme\n"), 0o600))
	return path
}

func TestImportOptions_Input(t *testing.T) {
	file := writeCustomerFile(t)

	in, err := (&importOptions{kind: "Customer", file: file, mode: "REJECT", source: "confirmed", user: "ops"}).input()
	require.NoError(t, err)
	assert.Equal(t, constants.KindCustomer, in.Kind)
	assert.Equal(t, constants.FormatCSV, in.Format)
	assert.Equal(t, constants.ConflictReject, in.ConflictMode)
	assert.Equal(t, constants.SourceConfirmed, in.DefaultSource)
	assert.Equal(t, constants.ChannelFile, in.Channel)

	in, err = (&importOptions{kind: "customer", file: file, user: "ops"}).input()
	require.NoError(t, err)
	assert.Empty(t, in.ConflictMode)
	assert.Empty(t, in.DefaultSource)
}

func TestImportOptions_InputRejectsBadFlags(t *testing.T) {
	file := writeCustomerFile(t)

	tests := []struct {
		name string
		opts importOptions
		want string
	}{
		{"unknown mode", importOptions{kind: "customer", file: file, mode: "lenient"}, `unknown --mode "lenient"`},
		{"inferred source", importOptions{kind: "customer", file: file, source: "inferred"}, `unknown --default-source "inferred"`},
		{"unknown source", importOptions{kind: "customer", file: file, source: "maybe"}, `unknown --default-source "maybe"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.input()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
