package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"akdb/pkg/collab"
	"akdb/pkg/collab/memcatalog"
	"akdb/pkg/events"
	"akdb/pkg/lock"
	"akdb/pkg/logging"
	"akdb/pkg/monitor"
	"akdb/pkg/raopt"
	"akdb/pkg/txn"
)

// Configuration holds the process flags: the lock table's bucket count and
// wait timeout, the transaction manager's admission bound, and the raopt
// attribute-list wire format.
type Configuration struct {
	NumberOfHashBuckets   int
	MaxActiveTransactions int
	LockWaitTimeout       int64
	AttributeDelimiter    string
	AttributeEscape       string

	MetricsAddr string
	DemoMode    bool
	NoMonitor   bool
}

func main() {
	config := parseArguments()
	showSplashScreen()

	logging.InitDefault()
	defer logging.Close()

	bus := events.NewBus()
	lt := lock.New(lock.Config{
		NumBuckets:  config.NumberOfHashBuckets,
		WaitTimeout: config.LockWaitTimeout,
	}, bus)

	catalog := memcatalog.New()
	if config.DemoMode {
		seedDemoCatalog(catalog)
	}

	mgr := txn.New(txn.Config{MaxActiveTransactions: config.MaxActiveTransactions}, lt, bus, catalog, catalog)

	go serveMetrics(config.MetricsAddr)

	if config.DemoMode {
		runDemoWorkload(mgr, catalog)
		demoRewrite(config, catalog)
	}

	if config.NoMonitor {
		mgr.AwaitQuiescence()
		return
	}

	if err := startMonitor(lt, mgr, bus); err != nil {
		log.Fatalf("monitor exited with error: %v", err)
	}
}

func parseArguments() Configuration {
	var config Configuration

	flag.IntVar(&config.NumberOfHashBuckets, "number_of_hash_buckets", 1024, "Number of buckets in the lock table's hash index")
	flag.IntVar(&config.MaxActiveTransactions, "max_active_transactions", 10, "Maximum number of concurrently running transactions")
	flag.Int64Var(&config.LockWaitTimeout, "lock_wait_timeout", 0, "Milliseconds a lock request waits before aborting with LockTimeout; 0 disables the timeout")
	flag.StringVar(&config.AttributeDelimiter, "attribute_delimiter", ";", "Delimiter joining attribute names in an AttributeList token")
	flag.StringVar(&config.AttributeEscape, "attribute_escape", "`", "Escape character separating condition operands from attribute names")
	flag.StringVar(&config.MetricsAddr, "metrics_addr", ":9090", "Address to serve /metrics on")
	flag.BoolVar(&config.DemoMode, "demo", false, "Seed a demo catalog and run a sample workload on startup")
	flag.BoolVar(&config.NoMonitor, "no_monitor", false, "Run headless: skip the TUI and exit once the demo workload quiesces")

	flag.Parse()
	return config
}

func showSplashScreen() {
	splash := `
  ___    _  __  ___  ___
 / _ | / //_/ / _ \/ _ )
/ __ |/ ,<   / // / _  |
/_/ |_/_/|_| /____/____/

lock table + transaction manager + relational-algebra rewriter
`
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	fmt.Println(style.Render(splash))
}

func serveMetrics(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	logging.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logging.Error("metrics server exited", "error", err)
	}
}

func startMonitor(lt *lock.LockTable, mgr *txn.Manager, bus *events.Bus) error {
	model := monitor.NewModel(lt, mgr, bus)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func seedDemoCatalog(catalog *memcatalog.Catalog) {
	catalog.RegisterTable("users", []string{"id", "name", "email"}, 0, 4)
	catalog.RegisterTable("orders", []string{"id", "user_id", "total"}, 5, 9)
}

// demoRewrite runs the projection rewriter over a small cascade on the demo
// catalog and logs the result, giving raopt a reachable call site at
// startup independent of its test suite.
func demoRewrite(config Configuration, catalog *memcatalog.Catalog) {
	cfg := raopt.Config{Delimiter: config.AttributeDelimiter, Escape: config.AttributeEscape}
	r := raopt.New(cfg, catalog)

	expr := raopt.Expression{
		raopt.Operator(raopt.OpProjection), cfg.AttributeList([]string{"id", "name"}),
		raopt.Operator(raopt.OpProjection), cfg.AttributeList([]string{"id", "name", "email"}),
		raopt.Operand("users"),
	}

	rewritten := r.Rewrite(expr)
	logging.Info("demo rewrite", "input_tokens", len(expr), "output_tokens", len(rewritten))
}

// runDemoWorkload submits overlapping readers and a writer so the monitor
// has something to show. Submissions fan out over an errgroup; the group is
// left to drain in the background so startup never blocks on the workload.
func runDemoWorkload(mgr *txn.Manager, catalog *memcatalog.Catalog) {
	tables := catalog.Tables()

	var g errgroup.Group
	for _, table := range tables {
		table := table
		g.Go(func() error {
			return mgr.Submit([]collab.Command{{Table: table, Kind: collab.Select}}).Wait()
		})
	}
	if len(tables) > 0 {
		g.Go(func() error {
			return mgr.Submit([]collab.Command{{Table: tables[0], Kind: collab.Update}}).Wait()
		})
	}

	go func() {
		if err := g.Wait(); err != nil {
			logging.WithError(err).Warn("demo workload transaction aborted")
		}
	}()
}
