package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/saylorsolutions/logseq/pkg/dsl"
	"github.com/saylorsolutions/logseq/pkg/iterator"
	"github.com/saylorsolutions/logseq/pkg/parse"
	"github.com/saylorsolutions/logseq/pkg/preset"
	"github.com/saylorsolutions/logseq/plugin/file"
	"github.com/saylorsolutions/logseq/plugin/store"
	"github.com/saylorsolutions/logseq/plugin/stdstream"
	"github.com/saylorsolutions/logseq/runtime"
)

func main() {
	log := hclog.Default()
	if len(os.Args) <= 1 {
		usage()
		return
	}
	args := os.Args[1:]
	switch args[0] {
	case "parse":
		start := time.Now()
		if err := doParse(log, args[1:]...); err != nil {
			exitError("Failed to parse: %v", err)
		}
		log.Debug("Parse finished", "duration", time.Since(start).Round(time.Millisecond).String())
	case "vet":
		if err := doVet(args[1:]...); err != nil {
			exitError("Rule script check failed: %v", err)
		}
		fmt.Println("Rule script is valid")
	case "query":
		if err := doQuery(log, args[1:]...); err != nil {
			exitError("Query failed: %v", err)
		}
	case "help":
		usage()
	default:
		exitError("Unrecognized command: '%s'", args[0])
	}
}

func exitError(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Printf("Error: "+format, args...)
	usage()
	os.Exit(-1)
}

func usage() {
	text := `
logseq splits log lines into a structured header and a sequence of words.

  logseq help
  logseq parse [-rules SCRIPT] [-follow] [-strict] [-keep] [-words] [-out FILE] [-store DB -table TABLE] [FILE]
  logseq vet SCRIPT
  logseq query DB TABLE

The 'help' subcommand will print this usage information.
The 'parse' subcommand parses FILE, or STDIN when no FILE is given. By
default the built-in syslog rules are used; -rules substitutes a rule
script. Parsed entries are written to STDOUT as JSON lines, to -out as
a file, or to a sqlite database with -store and -table. -words prints
only the tokenized words of each line. -follow tails FILE instead of
reading it once. -strict stops at the first unparsed line, -keep passes
unparsed lines through unchanged.
The 'vet' subcommand checks SCRIPT for rule definition errors without
parsing anything.
The 'query' subcommand prints the entries stored in TABLE of the
sqlite database DB as JSON lines.
`
	fmt.Print(text)
}

type parseFlags struct {
	rules  string
	follow bool
	strict bool
	keep   bool
	words  bool
	out    string
	storeF string
	table  string
}

func doParse(log hclog.Logger, args ...string) (rerr error) {
	var f parseFlags
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.StringVar(&f.rules, "rules", "", "rule script to use instead of the built-in syslog rules")
	fs.BoolVar(&f.follow, "follow", false, "tail the file instead of reading it once")
	fs.BoolVar(&f.strict, "strict", false, "stop at the first line that fails to parse")
	fs.BoolVar(&f.keep, "keep", false, "pass unparsed lines through unchanged")
	fs.BoolVar(&f.words, "words", false, "print only the tokenized words of each line")
	fs.StringVar(&f.out, "out", "", "write entries to this file instead of STDOUT")
	fs.StringVar(&f.storeF, "store", "", "write entries to this sqlite database")
	fs.StringVar(&f.table, "table", "", "table name to use with -store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parser, err := loadRules(f.rules)
	if err != nil {
		return err
	}
	var opts []runtime.SessionOpt
	if f.strict {
		opts = append(opts, runtime.Strict())
	}
	if f.keep {
		opts = append(opts, runtime.KeepUnparsed())
	}
	session := runtime.NewSession(log, parser, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil && rerr == nil {
			rerr = err
		}
		stats := session.Stats()
		if stats.Failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d line(s) failed to parse\n", stats.Failed, stats.Lines)
		}
	}()

	src, err := sourceFor(ctx, fs.Args(), f.follow)
	if err != nil {
		return err
	}
	out, err := session.Run(src)
	if err != nil {
		return err
	}
	return sinkTo(log, out, f)
}

func loadRules(script string) (*parse.LogParser, error) {
	if script == "" {
		return preset.Default()
	}
	return dsl.LoadFile(script)
}

func sourceFor(ctx context.Context, args []string, follow bool) (iterator.Iterator, error) {
	if len(args) == 0 {
		if follow {
			return nil, errors.New("-follow needs a file to tail")
		}
		return stdstream.In(ctx), nil
	}
	if follow {
		return file.Follow(ctx, args[0])
	}
	return file.Source(args[0])
}

func sinkTo(log hclog.Logger, out iterator.Iterator, f parseFlags) error {
	switch {
	case f.storeF != "":
		if f.table == "" {
			iterator.Drain(out)
			return errors.New("-store needs -table")
		}
		db, err := store.NewStore(log, f.storeF)
		if err != nil {
			iterator.Drain(out)
			return err
		}
		defer func() {
			_ = db.Close()
		}()
		return db.Sink(out, f.table)
	case f.out != "":
		return file.Sink(out, f.out, 0o644)
	case f.words:
		return stdstream.WordsSink(os.Stdout, out)
	default:
		return stdstream.Out(out)
	}
}

func doVet(args ...string) error {
	if len(args) < 1 {
		return errors.New("not enough arguments for vet")
	}
	_, err := dsl.LoadFile(args[0])
	return err
}

func doQuery(log hclog.Logger, args ...string) error {
	if len(args) < 2 {
		return errors.New("not enough arguments for query")
	}
	db, err := store.NewStore(log, args[0])
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	iter, err := db.QueryEntries(args[1])
	if err != nil {
		return err
	}
	return stdstream.Out(iter)
}
