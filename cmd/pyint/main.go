package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/peterh/liner"

	"github.com/agenthands/pyint/pkg/config"
	"github.com/agenthands/pyint/pkg/diag"
	"github.com/agenthands/pyint/pkg/session"
	"github.com/agenthands/pyint/pkg/tracedump"
)

const (
	promptMain = ">>> "
	promptCont = "... "
)

type options struct {
	configFile  string
	dumpFile    string
	table       bool
	tokenize    bool
	verbose     bool
	interactive bool
	input       string
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: pyint [options] <source-file>
       pyint -i [-c config.yaml]

options:
  -t        print the token table before running
  -d FILE   write the token table to FILE (.db/.sqlite for SQLite)
  -c FILE   load settings from FILE instead of %s
  -n        tokenize only, do not run
  -v        trace calls, returns and breaks to stderr
  -i        start an interactive session
`, config.DefaultFile)
}

func readFlags(args []string) (*options, bool) {
	opts, optind, err := getopt.Getopts(args, "td:c:nvi")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, false
	}
	o := &options{}
	for _, opt := range opts {
		switch opt.Option {
		case 't':
			o.table = true
		case 'd':
			o.dumpFile = opt.Value
		case 'c':
			o.configFile = opt.Value
		case 'n':
			o.tokenize = true
		case 'v':
			o.verbose = true
		case 'i':
			o.interactive = true
		}
	}

	rest := args[optind:]
	if o.interactive {
		return o, len(rest) == 0
	}
	if len(rest) != 1 {
		return nil, false
	}
	o.input = rest[0]
	return o, true
}

func loadConfig(o *options) (*config.Config, error) {
	if o.configFile != "" {
		return config.Load(o.configFile)
	}
	return config.LoadDir(".")
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	o, ok := readFlags(args)
	if !ok {
		usage()
		return 1
	}

	cfg, err := loadConfig(o)
	if err != nil {
		log.Println(err)
		return 1
	}
	if o.dumpFile != "" {
		cfg.DumpFile = o.dumpFile
	}
	if o.verbose {
		cfg.Trace = true
	}

	var sinks []tracedump.Sink
	if o.table {
		sinks = append(sinks, tracedump.NewTextSink(os.Stdout))
	}
	if cfg.DumpFile != "" {
		sink, err := tracedump.Open(cfg.DumpFile)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	sessOpts := session.Options{
		Out:      os.Stdout,
		MaxDepth: cfg.MaxDepth,
		Sinks:    sinks,
	}
	if cfg.Trace {
		sessOpts.Trace = log.New(os.Stderr, "trace: ", 0)
	}
	sess := session.New(sessOpts)
	colored := diag.ColorEnabled(cfg.Color, os.Stderr)

	if o.interactive {
		return runREPL(sess, cfg, colored)
	}
	return runFile(sess, o, colored)
}

func runFile(sess *session.Session, o *options, colored bool) int {
	src, err := os.ReadFile(o.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %s\n", o.input)
		return 1
	}
	if len(src) == 0 || src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}

	stop := interruptOnSignal(sess)
	defer stop()

	if o.tokenize {
		_, err = sess.Tokenize(src)
	} else {
		err = sess.Exec(src)
	}
	if err != nil {
		diag.Fprint(os.Stderr, err, src, o.input, colored)
		return 1
	}
	return 0
}

// interruptOnSignal forwards SIGINT to the running session until stop is
// called.
func interruptOnSignal(sess *session.Session) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, os.Interrupt)
	go func() {
		for {
			select {
			case <-ch:
				sess.Interrupt()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func runREPL(sess *session.Session, cfg *config.Config, colored bool) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	stop := interruptOnSignal(sess)
	defer stop()

	for {
		entry, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(entry) == "" {
			continue
		}
		ln.AppendHistory(strings.TrimRight(entry, "\n"))

		if err := sess.Exec([]byte(entry)); err != nil {
			diag.Fprint(os.Stderr, err, []byte(entry), "<stdin>", colored)
		}
	}

	if cfg.HistoryFile != "" {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return 0
}

// readEntry collects lines until they form a complete entry. ok is false at
// end of input; Ctrl-C discards the lines read so far.
func readEntry(ln *liner.State) (entry string, ok bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String() + "\n", true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			log.Println(err)
			return "", false
		}

		b.WriteString(line)
		b.WriteByte('\n')
		if session.Complete(b.String()) {
			return b.String(), true
		}
	}
}
