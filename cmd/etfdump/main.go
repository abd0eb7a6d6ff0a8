// Command etfdump replays captured distribution packets and prints the
// decoded messages.
//
// Every input file holds the packets of one connection, one hex encoded
// packet per line, the way they follow the handshake on the wire (version
// magic, distribution header, control tuple, payload). Empty lines and
// lines starting with '#' are ignored. Files are decoded concurrently, each
// with its own atom cache.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"

	"github.com/in-the-mood-for-mov/erlang-cnode/dist"
	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

var (
	ConfigPath string
	LogLevel   string
	Skip       bool
	Trace      bool
	MaxDepth   int
)

const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
)

func init() {
	flag.StringVar(&ConfigPath, "config", "", "TOML file with the decoding options")
	flag.StringVar(&LogLevel, "level", "", "log level: debug, info, warn, error (overrides the config)")
	flag.BoolVar(&Skip, "skip", false, "skip packets that fail to decode instead of stopping")
	flag.BoolVar(&Trace, "trace.dist", false, "trace erlang distribution protocol")
	flag.IntVar(&MaxDepth, "max-depth", 0, "maximum nesting of decoded terms (overrides the config)")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "etfdump:", err)
		os.Exit(1)
	}
}

func loadOptions() (dist.Options, error) {
	options := dist.DefaultOptions()
	if ConfigPath != "" {
		var err error
		if options, err = dist.LoadOptions(ConfigPath); err != nil {
			return dist.Options{}, err
		}
	}
	if LogLevel != "" {
		options.LogLevel = LogLevel
	}
	if Skip {
		options.ErrorPolicy = dist.ErrorPolicySkip
	}
	if MaxDepth > 0 {
		options.MaxDepth = MaxDepth
	}
	return options, options.Validate()
}

func run(ctx context.Context, files []string) error {
	options, err := loadOptions()
	if err != nil {
		return err
	}
	level, err := lib.ParseLevel(options.LogLevel)
	if err != nil {
		return err
	}
	logger := lib.NewConsoleZap(level, colorable.NewColorableStderr())
	defer logger.Sync()
	if Trace {
		// trace lines are debug entries whatever the level
		lib.SetTraceLogger(lib.NewConsoleZap(lib.DebugLevel, colorable.NewColorableStderr()))
	}
	lib.SetTrace(Trace)

	metrics, err := dist.NewMetrics(nil)
	if err != nil {
		return err
	}

	conns := make([]*dist.Connection, 0, len(files))
	names := make(map[string]string, len(files))
	for _, file := range files {
		q := dist.NewQueueTransport(0)
		if err := readPackets(file, q); err != nil {
			return err
		}
		q.Close()

		c := dist.NewConnection(q,
			dist.WithOptions(options),
			dist.WithLogger(logger.With("file", file)),
			dist.WithMetrics(metrics),
		)
		names[c.ID()] = file
		conns = append(conns, c)
	}

	out := colorable.NewColorableStdout()
	var mu sync.Mutex
	err = dist.ServeAll(ctx, conns, func(_ context.Context, c *dist.Connection, m dist.Message) error {
		mu.Lock()
		defer mu.Unlock()
		printMessage(out, names[c.ID()], m)
		return nil
	})

	for _, c := range conns {
		stats := c.Stats()
		logger.Infof("%s: %d decoded, %d failed, %d cached atoms",
			names[c.ID()], stats.Decoded, stats.Failed, c.Cache().Len())
	}
	return err
}

func readPackets(file string, q *dist.QueueTransport) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		data, err := hex.DecodeString(strings.ReplaceAll(text, " ", ""))
		if err != nil {
			return fmt.Errorf("%s:%d: %w", file, line, err)
		}
		if err := q.Push(dist.Packet{Data: data}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printMessage(out io.Writer, file string, m dist.Message) {
	fmt.Fprintf(out, "%s%s%s %s%s%s %+v",
		colorYellow, file, colorReset,
		colorCyan, m.Control.Type(), colorReset,
		m.Control)
	if m.Payload != nil {
		fmt.Fprintf(out, " %#v", m.Payload)
	}
	fmt.Fprintln(out)
}
