// Command treed is an interactive and scriptable driver for package tree.
// It reads one operation per line from standard input —
//
//	list /a/
//	create /a/b/
//	remove /a/b/
//	move /a/ /b/c/
//
// logs each operation's outcome with a per-operation correlation ID, and
// exits nonzero if any command failed (a malformed line or an operation
// that returned an error). It also exposes a "workload"
// subcommand that fans a randomized concurrent workload out across the
// same tree, for ad hoc stress-testing outside of the test suite.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Buarzej/treelock/internal/config"
	"github.com/Buarzej/treelock/internal/workload"
	"github.com/Buarzej/treelock/tree"
)

var (
	log  = logrus.New()
	conf = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "treed",
	Short: "Drive an in-memory directory tree from scripted commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := tree.New()
		defer t.Close()

		scanner := bufio.NewScanner(os.Stdin)
		failures := 0
		for scanner.Scan() {
			if !runLine(t, scanner.Text()) {
				failures++
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrap(err, "reading commands")
		}
		if failures > 0 {
			return fmt.Errorf("%d command(s) failed", failures)
		}
		return nil
	},
}

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Run a randomized concurrent workload against a fresh tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := tree.New()
		defer t.Close()

		r := rand.New(rand.NewSource(conf.Seed))
		batches := make([][]workload.Op, conf.Workers)
		for i := range batches {
			batches[i] = workload.Generate(r, workload.DefaultNamespace, conf.OpsPerWorker)
		}

		entry := log.WithFields(logrus.Fields{
			"correlation_id": uuid.NewString(),
			"workers":        conf.Workers,
			"ops_per_worker": conf.OpsPerWorker,
			"seed":           conf.Seed,
		})
		entry.Info("starting workload")

		if err := workload.Run(context.Background(), t, batches); err != nil {
			entry.WithError(err).Error("workload failed")
			return errors.Wrap(err, "run workload")
		}
		entry.Info("workload completed")
		return nil
	},
}

// runLine parses and executes a single command line, logging its outcome
// under a fresh correlation ID. It reports whether the line succeeded.
func runLine(t *tree.Tree, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	entry := log.WithField("correlation_id", uuid.NewString())

	switch fields[0] {
	case "list":
		if len(fields) != 2 {
			entry.Error("list requires exactly one path")
			return false
		}
		listing, err := t.List(fields[1])
		if err != nil {
			entry.WithError(errors.Wrapf(err, "list %s", fields[1])).Error("list failed")
			return false
		}
		entry.WithField("path", fields[1]).Info("list")
		fmt.Println(listing)
		return true

	case "create":
		if len(fields) != 2 {
			entry.Error("create requires exactly one path")
			return false
		}
		if err := t.Create(fields[1]); err != nil {
			entry.WithError(errors.Wrapf(err, "create %s", fields[1])).Error("create failed")
			return false
		}
		entry.WithField("path", fields[1]).Info("create")
		return true

	case "remove":
		if len(fields) != 2 {
			entry.Error("remove requires exactly one path")
			return false
		}
		if err := t.Remove(fields[1]); err != nil {
			entry.WithError(errors.Wrapf(err, "remove %s", fields[1])).Error("remove failed")
			return false
		}
		entry.WithField("path", fields[1]).Info("remove")
		return true

	case "move":
		if len(fields) != 3 {
			entry.Error("move requires exactly two paths")
			return false
		}
		if err := t.Move(fields[1], fields[2]); err != nil {
			entry.WithError(errors.Wrapf(err, "move %s -> %s", fields[1], fields[2])).Error("move failed")
			return false
		}
		entry.WithFields(logrus.Fields{"source": fields[1], "target": fields[2]}).Info("move")
		return true

	default:
		entry.Errorf("unknown command %q", fields[0])
		return false
	}
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	workloadCmd.Flags().IntVar(&conf.Workers, "workers", conf.Workers, "number of concurrent goroutines")
	workloadCmd.Flags().IntVar(&conf.OpsPerWorker, "ops", conf.OpsPerWorker, "operations per goroutine")
	workloadCmd.Flags().Int64Var(&conf.Seed, "seed", conf.Seed, "random seed, for reproducing a reported failure")
	rootCmd.AddCommand(workloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("treed failed")
		os.Exit(1)
	}
}
