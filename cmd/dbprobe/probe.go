package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pengdows/pengdows.crud-sub014/pkg/connection"
	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe [connection-name]",
	Short: "Probe a database connection",
	Long: `Open a managed connection and report what detection found: product, server
version, topology, dialect, and the requested and resolved connection mode.

Examples:
  # Probe a connection defined in the config file
  dbprobe probe orders-db

  # Probe an ad-hoc DSN
  dbprobe probe --driver postgres --dsn "postgres://app@localhost:5432/orders"
  dbprobe probe --driver sqlite --dsn "file:app.db" --mode single_writer`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := resolveSpec(cmd, args)
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return runProbe(spec, timeout)
	},
}

func init() {
	registerSpecFlags(probeCmd)
}

// registerSpecFlags adds the flags shared by every command that opens a
// managed connection.
func registerSpecFlags(cmd *cobra.Command) {
	cmd.Flags().String("driver", "", "Driver name for an ad-hoc connection (postgres, sqlite, mssql, ...)")
	cmd.Flags().String("dsn", "", "Connection string for an ad-hoc connection")
	cmd.Flags().String("mode", "", "Connection mode to request (standard, keepalive, single_connection, single_writer)")
	cmd.Flags().String("access", "", "Access restriction (read_write, read_only, write_only)")
	cmd.Flags().String("search-path", "", "Default schema search path to apply per session (engine-specific)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Overall timeout for opening the connection")
}

// resolveSpec builds the connection spec from either the named config entry
// or the ad-hoc --driver/--dsn flags. Mode and access flags override the
// file entry when set.
func resolveSpec(cmd *cobra.Command, args []string) (*ConnectionSpec, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	driver, _ := cmd.Flags().GetString("driver")

	var (
		spec *ConnectionSpec
		err  error
	)
	switch {
	case dsn != "":
		if driver == "" {
			return nil, fmt.Errorf("--dsn requires --driver")
		}
		spec = &ConnectionSpec{Name: "ad-hoc", Driver: driver, DSN: dsn}
	case len(args) == 1:
		spec, err = findConnection(configFile, args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("a connection name or --driver/--dsn pair is required")
	}

	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		spec.Mode = mode
	}
	if access, _ := cmd.Flags().GetString("access"); access != "" {
		spec.Access = access
	}
	if sp, _ := cmd.Flags().GetString("search-path"); sp != "" {
		spec.SearchPath = sp
	}
	return spec, nil
}

// openManager constructs the managed connection for a spec.
func openManager(spec *ConnectionSpec, timeout time.Duration) (*connection.Manager, error) {
	mode, err := connection.ParseMode(spec.Mode)
	if err != nil {
		return nil, err
	}
	access, err := connection.ParseAccess(spec.Access)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return connection.New(ctx, connection.Config{
		ConnectionString: spec.DSN,
		DriverName:       spec.Driver,
		Mode:             mode,
		Access:           access,
		SearchPath:       spec.SearchPath,
		Logger:           log,
	})
}

func runProbe(spec *ConnectionSpec, timeout time.Duration) error {
	m, err := openManager(spec, timeout)
	if err != nil {
		return fmt.Errorf("probe %s: %v", spec.Name, err)
	}
	defer m.Close()

	topo := m.Topology()
	_, reason := connection.ResolveExplain(m.RequestedMode(), m.Product(), topo)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Connection:\t%s\n", spec.Name)
	fmt.Fprintf(w, "DSN:\t%s\n", m.RedactedDSN())
	fmt.Fprintf(w, "Product:\t%s\n", m.Product())
	fmt.Fprintf(w, "Server version:\t%s\n", m.ServerInfo().Version)
	fmt.Fprintf(w, "Dialect:\t%s\n", m.Dialect().Name())
	fmt.Fprintf(w, "Embedded:\t%t\n", topo.Embedded)
	if topo.EmbeddedVariant {
		fmt.Fprintf(w, "Embedded variant:\ttrue\n")
	}
	if topo.LazyStart {
		fmt.Fprintf(w, "Lazy start:\ttrue\n")
	}
	fmt.Fprintf(w, "Memory:\t%s\n", topo.MemoryKind)
	fmt.Fprintf(w, "Requested mode:\t%s\n", m.RequestedMode())
	fmt.Fprintf(w, "Resolved mode:\t%s\n", m.Mode())
	if reason != "" {
		fmt.Fprintf(w, "Coerced because:\t%s\n", reason)
	}
	fmt.Fprintf(w, "Access:\t%s\n", m.Access())
	if m.Product() == dbcapabilities.SQLServer {
		fmt.Fprintf(w, "RCSI:\t%t\n", m.ReadCommittedSnapshotOn())
	}
	return w.Flush()
}
