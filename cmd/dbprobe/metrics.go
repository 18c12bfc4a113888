package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pengdows/pengdows.crud-sub014/pkg/connection"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics [connection-name]",
	Short: "Exercise a connection and print pool metrics",
	Long: `Open a managed connection, run a few acquire/ping/release rounds against
it, and print the resulting metrics snapshot.

Examples:
  dbprobe metrics orders-db
  dbprobe metrics orders-db --rounds 20
  dbprobe metrics --driver sqlite --dsn "file::memory:?cache=shared"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := resolveSpec(cmd, args)
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		rounds, _ := cmd.Flags().GetInt("rounds")
		return runMetrics(spec, timeout, rounds)
	},
}

func init() {
	registerSpecFlags(metricsCmd)
	metricsCmd.Flags().Int("rounds", 5, "Acquire/ping/release rounds to run before the snapshot")
}

func runMetrics(spec *ConnectionSpec, timeout time.Duration, rounds int) error {
	m, err := openManager(spec, timeout)
	if err != nil {
		return fmt.Errorf("metrics %s: %v", spec.Name, err)
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := 0; i < rounds; i++ {
		h, err := m.GetConnection(ctx, connection.PurposeRead, false)
		if err != nil {
			log.Warnf("round %d: %v", i+1, err)
			continue
		}
		if err := h.PingContext(ctx); err != nil {
			log.Warnf("round %d ping: %v", i+1, err)
		}
		_ = m.ReleaseConnection(h)
	}

	snap := m.Metrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Connection:\t%s (%s, %s)\n", spec.Name, m.Product(), m.Mode())
	fmt.Fprintf(w, "\t\n")
	fmt.Fprintf(w, "Connections opened:\t%d\n", snap.ConnectionsOpened)
	fmt.Fprintf(w, "Connections closed:\t%d\n", snap.ConnectionsClosed)
	fmt.Fprintf(w, "Connections open:\t%d\n", snap.ConnectionsOpen)
	fmt.Fprintf(w, "Connections peak:\t%d\n", snap.ConnectionsPeak)
	fmt.Fprintf(w, "Connections created:\t%d\n", snap.ConnectionsCreated)
	fmt.Fprintf(w, "Connections reused:\t%d\n", snap.ConnectionsReused)
	fmt.Fprintf(w, "Connection failures:\t%d\n", snap.ConnectionFailures)
	fmt.Fprintf(w, "Connection timeouts:\t%d\n", snap.ConnectionTimeouts)
	fmt.Fprintf(w, "Pool efficiency:\t%.2f\n", snap.PoolEfficiency)
	fmt.Fprintf(w, "\t\n")
	fmt.Fprintf(w, "Commands executed:\t%d\n", snap.CommandsExecuted)
	fmt.Fprintf(w, "Commands failed:\t%d\n", snap.CommandsFailed)
	fmt.Fprintf(w, "Commands timed out:\t%d\n", snap.CommandsTimedOut)
	fmt.Fprintf(w, "Commands cancelled:\t%d\n", snap.CommandsCancelled)
	fmt.Fprintf(w, "Rows read:\t%d\n", snap.RowsRead)
	fmt.Fprintf(w, "Rows affected:\t%d\n", snap.RowsAffected)
	fmt.Fprintf(w, "Stmt cache hits:\t%d\n", snap.StmtCacheHits)
	fmt.Fprintf(w, "Stmt cache evictions:\t%d\n", snap.StmtCacheEvictions)
	fmt.Fprintf(w, "\t\n")
	fmt.Fprintf(w, "Transactions active:\t%d\n", snap.TransactionsActive)
	fmt.Fprintf(w, "Transactions peak:\t%d\n", snap.TransactionsPeak)
	fmt.Fprintf(w, "Transactions committed:\t%d\n", snap.TransactionsCommitted)
	fmt.Fprintf(w, "Transactions rolled back:\t%d\n", snap.TransactionsRolledBack)
	fmt.Fprintf(w, "\t\n")
	fmt.Fprintf(w, "Avg command duration:\t%s\n", snap.AvgCommandDuration)
	fmt.Fprintf(w, "Avg connection hold:\t%s\n", snap.AvgConnectionHold)
	fmt.Fprintf(w, "Avg transaction time:\t%s\n", snap.AvgTransactionTime)
	fmt.Fprintf(w, "Command duration p95:\t%s\n", snap.CommandDurationP95)
	fmt.Fprintf(w, "Command duration p99:\t%s\n", snap.CommandDurationP99)
	return w.Flush()
}
