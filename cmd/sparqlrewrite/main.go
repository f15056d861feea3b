// Command sparqlrewrite is the thin invocation adapter described at
// §6 of the specification: it supplies (user, querystring) to the
// rewrite engine and prints the diagnostic transcript plus the final
// query. The SPARQL parser/serializer and the RDF store loader are
// themselves out of scope for the engine, so this adapter reads simple
// JSON fixtures instead (see fixtures.go); swapping in a real SPARQL
// frontend only touches this package.
package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/GMaffio99/SPARQLPolicyTool/algebra"
	"github.com/GMaffio99/SPARQLPolicyTool/policy"
	"github.com/GMaffio99/SPARQLPolicyTool/rewrite"
)

// Options are the command-line flags.
type Options struct {
	User       string `short:"u" long:"user" required:"true" description:"user identity issuing the query"`
	PolicyFile string `short:"p" long:"policy" required:"true" description:"path to the JSON policy file"`
	QueryFile  string `short:"q" long:"query" required:"true" description:"path to a JSON query fixture"`
	Config     string `short:"c" long:"config" description:"path to a YAML config file"`
	Verbose    bool   `short:"v" long:"verbose" description:"emit debug-level logging"`
}

// Config is the adapter's own runtime configuration, distinct from the
// policy file: where the dataset lives, and the optional cache sizes.
type Config struct {
	DatasetFile      string `yaml:"datasetFile"`
	SQLitePath       string `yaml:"sqlitePath,omitempty"`
	PolicySnapshotDB string `yaml:"policySnapshotDB,omitempty"`
	OracleCacheSize  int64  `yaml:"oracleCacheSize,omitempty"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	log := logrus.New()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return err
	}

	var store *policy.Store
	if cfg.PolicySnapshotDB != "" {
		store, err = policy.LoadCached(opts.PolicyFile, cfg.PolicySnapshotDB, log)
	} else {
		store, err = policy.Load(opts.PolicyFile, log)
	}
	if err != nil {
		return fmt.Errorf("loading policy file: %w", err)
	}

	ctx := context.Background()
	ds, err := buildDataset(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	in, err := loadQuery(opts.QueryFile, algebra.Merger{})
	if err != nil {
		return fmt.Errorf("loading query: %w", err)
	}

	fmt.Println("input query:")
	fmt.Println(in.String())
	fmt.Println()

	driver := rewrite.New(store, ds, log)
	out, stats, err := driver.Rewrite(ctx, opts.User, in)
	if err != nil {
		return fmt.Errorf("rewriting query: %w", err)
	}

	for _, line := range stats.Transcript {
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println("output query:")
	fmt.Println(out.String())

	return nil
}
