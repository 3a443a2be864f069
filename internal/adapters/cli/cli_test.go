package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	ledgerCmd "github.com/andrescamacho/neonrails-go/internal/application/ledger/commands"
	"github.com/andrescamacho/neonrails-go/internal/application/setup"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
)

// writeTestConfig writes a quiet config backed by a sqlite file in a temp dir
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := `
logging:
  level: error
  output: stderr
database:
  type: sqlite
  path: ` + filepath.Join(dir, "neonrails.db") + `
game:
  random_event_probability: 0
daemon:
  save_slot: test-slot
` + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// execute runs the root command and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFormatCredits(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-500, "-500"},
		{-12000, "-12,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCredits(tt.amount))
	}
	assert.Equal(t, "+13", formatAmount(13))
	assert.Equal(t, "-500", formatAmount(-500))
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "****wxyz", maskSecret("AIzaSy-wxyz"))

	assert.Equal(t, "postgresql://nr:****@db:5432/neonrails", maskPassword("postgresql://nr:hunter2@db:5432/neonrails"))
	assert.Equal(t, "postgresql://db:5432/neonrails", maskPassword("postgresql://db:5432/neonrails"))
	assert.Equal(t, "", maskPassword(""))
}

func TestSimulateCommand_AutoBuild(t *testing.T) {
	// Arrange
	path := writeTestConfig(t, "")

	// Act
	out, err := execute(t, "--config", path, "simulate", "--ticks", "1", "--auto-build")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "SIMULATION (1 ticks)")
	// 1000 - 500 build, then one tick of 5 + 8 + 5 fares
	assert.Regexp(t, `Credits:\s+518\n`, out)
	assert.Regexp(t, `Stations built:\s+1\n`, out)
	assert.Regexp(t, `Network load:\s+36%`, out)
	assert.Contains(t, out, "Sector 7 Slums")
	assert.Contains(t, out, "INDUSTRIAL")
}

func TestSimulateCommand_AutoUpgrade(t *testing.T) {
	path := writeTestConfig(t, "")

	out, err := execute(t, "--config", path, "simulate", "--ticks", "2", "--auto-upgrade")

	require.NoError(t, err)
	assert.Regexp(t, `Upgrades:\s+2\n`, out)
	assert.Regexp(t, `Tick:\s+2\n`, out)
}

func TestSimulateCommand_EventsOverride(t *testing.T) {
	path := writeTestConfig(t, "")

	out, err := execute(t, "--config", path, "simulate", "--ticks", "3", "--event-probability", "1")

	require.NoError(t, err)
	// Offline events are neutral and move no credits
	assert.Regexp(t, `Events:\s+0 positive, 0 negative, 3 neutral`, out)
	assert.Regexp(t, `Credits:\s+1,039\n`, out)
}

func TestSimulateCommand_RejectsBadFlags(t *testing.T) {
	path := writeTestConfig(t, "")

	_, err := execute(t, "--config", path, "simulate", "--ticks", "0")
	assert.Error(t, err)

	_, err = execute(t, "--config", path, "simulate", "--event-probability", "1.5")
	assert.Error(t, err)
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	// Arrange
	path := writeTestConfig(t, "content:\n  api_key: AIzaSy-secret-9876\n")

	// Act
	out, err := execute(t, "--config", path, "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "save_slot: test-slot")
	assert.Contains(t, out, "****9876")
	assert.NotContains(t, out, "AIzaSy")
	assert.Contains(t, out, "build_cost: 500")
}

func TestLedgerCommands(t *testing.T) {
	// Arrange
	path := writeTestConfig(t, "")
	seedLedger(t, path)

	// Act
	listOut, err := execute(t, "--config", path, "ledger", "list", "--category", "CONSTRUCTION")
	require.NoError(t, err)
	flowOut, err := execute(t, "--config", path, "ledger", "cash-flow", "--from-tick", "1")
	require.NoError(t, err)
	emptyOut, err := execute(t, "--config", path, "ledger", "list", "--slot", "other-slot")
	require.NoError(t, err)

	// Assert
	assert.Contains(t, listOut, "TRANSACTIONS (Showing 2 of 2 total)")
	assert.Contains(t, listOut, "STATION_BUILD")
	assert.Contains(t, listOut, "BUILD_REFUND")
	assert.NotContains(t, listOut, "TICK_INCOME")

	assert.Contains(t, flowOut, "Period: tick 1 to now")
	assert.Regexp(t, `OPERATING_REVENUE\s+13\s+0\s+\+13\s+1`, flowOut)
	assert.Regexp(t, `Net Cash Flow:\s+\+13`, flowOut)

	assert.Contains(t, emptyOut, "No transactions found")
}

func TestLedgerList_InvalidType(t *testing.T) {
	path := writeTestConfig(t, "")

	_, err := execute(t, "--config", path, "ledger", "list", "--type", "LOTTERY")

	assert.Error(t, err)
}

// seedLedger records a build that was refunded, then one tick of fares
func seedLedger(t *testing.T, configFile string) {
	t.Helper()
	configPath = configFile
	defer func() { configPath = "" }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	db, err := openDatabase(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	med, err := setup.NewHandlerRegistry(persistence.NewGormTransactionRepository(db), shared.NewRealClock(), nil).CreateConfiguredMediator()
	require.NoError(t, err)

	for _, c := range []*ledgerCmd.RecordTransactionCommand{
		{Slot: "test-slot", Tick: 0, TransactionType: "STATION_BUILD", Amount: -500, BalanceBefore: 1000, BalanceAfter: 500, Description: "Construction started"},
		{Slot: "test-slot", Tick: 0, TransactionType: "BUILD_REFUND", Amount: 500, BalanceBefore: 500, BalanceAfter: 1000, Description: "Construction failed"},
		{Slot: "test-slot", Tick: 1, TransactionType: "TICK_INCOME", Amount: 13, BalanceBefore: 1000, BalanceAfter: 1013, Description: "Fares collected on tick 1"},
	} {
		_, err := med.Send(context.Background(), c)
		require.NoError(t, err)
	}
}
