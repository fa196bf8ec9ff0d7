// Command bptreedemo drives a bptree.Tree from the command line: create,
// reopen, insert, search, dump, and inspect an index file. It is a
// demonstration driver, not part of the index itself -- it owns the
// payload registry and the PRNG used by its own "seed" subcommand.
package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
	"github.com/sirupsen/logrus"

	"github.com/upsidedownfoxxo/bptree/internal/bptree"
	"github.com/upsidedownfoxxo/bptree/internal/config"
	"github.com/upsidedownfoxxo/bptree/internal/payloads"
)

var (
	ok   = color.New(color.FgGreen).SprintFunc()
	bad  = color.New(color.FgRed).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
	warn = color.New(color.FgYellow).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	cmd := args[0]
	rest := args[1:]

	var cfgPath string
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&cfgPath, "config", "", "optional YAML config file")
	fanout := fs.Int("fanout", 0, "fanout S (new indexes only)")
	blockSize := fs.IntP("block-size", "b", 0, "block size in bytes (new indexes only)")
	cacheSize := fs.Int("cache-size", 0, "buffer cache capacity")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), "loading config:", err)
		return 1
	}
	if *fanout > 0 {
		cfg.Fanout = *fanout
	}
	if *blockSize > 0 {
		cfg.BlockSize = *blockSize
	}
	if *cacheSize > 0 {
		cfg.CacheSize = *cacheSize
	}
	cfg, err = cfg.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	opts := bptree.StoreOptions{
		Fanout:    cfg.Fanout,
		BlockSize: cfg.BlockSize,
		CacheSize: cfg.CacheSize,
		ChanceMax: cfg.ChanceMax,
	}

	positional := fs.Args()
	switch cmd {
	case "create":
		return cmdCreate(positional, opts)
	case "put":
		return cmdPut(positional, opts)
	case "get":
		return cmdGet(positional, opts)
	case "graphviz":
		return cmdGraphviz(positional, opts)
	case "stats":
		return cmdStats(positional, opts)
	case "seed":
		return cmdSeed(positional, opts)
	default:
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Println("bptreedemo -- exercise a persistent B+-tree index")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bptreedemo create   <path>")
	fmt.Println("  bptreedemo put      <path> <key> <payload>")
	fmt.Println("  bptreedemo get      <path> <key>")
	fmt.Println("  bptreedemo graphviz <path>")
	fmt.Println("  bptreedemo stats    <path>")
	fmt.Println("  bptreedemo seed     <path> <count>")
	fmt.Println()
	fmt.Println("Flags: --config, --fanout, --block-size, --cache-size, -v/--verbose")
}

func parseKey(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func cmdCreate(args []string, opts bptree.StoreOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo create <path>")
		return 2
	}
	tree, err := bptree.New(args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()
	if err := tree.Save(); err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	fmt.Println(ok("OK"), "created", args[0])
	return 0
}

func cmdPut(args []string, opts bptree.StoreOptions) int {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo put <path> <key> <payload>")
		return 2
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), "invalid key:", err)
		return 2
	}
	tree, err := bptree.Load(args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()

	registry := payloads.NewRegistry()
	payloadID := registry.Put([]byte(args[2]))

	if err := tree.Insert(key, payloadID); err != nil {
		if err == bptree.ErrDuplicateKey {
			fmt.Println(warn("DUPLICATE"), "key", key, "already present")
			return 0
		}
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	if err := tree.Save(); err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	fmt.Println(ok("OK"), "inserted key", key)
	return 0
}

func cmdGet(args []string, opts bptree.StoreOptions) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo get <path> <key>")
		return 2
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), "invalid key:", err)
		return 2
	}
	tree, err := bptree.Load(args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()

	value, found, err := tree.Search(key)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	if !found {
		fmt.Println(dim("not found"))
		return 1
	}
	fmt.Println(ok("OK"), "payload id", value)
	return 0
}

func cmdGraphviz(args []string, opts bptree.StoreOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo graphviz <path>")
		return 2
	}
	tree, err := bptree.Load(args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()

	dot, err := tree.PrintGraphviz()
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	w := bufio.NewWriter(os.Stdout)
	fmt.Fprint(w, dot)
	w.Flush()
	return 0
}

func cmdStats(args []string, opts bptree.StoreOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo stats <path>")
		return 2
	}
	tree, err := bptree.Load(args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()

	info, statErr := os.Stat(args[0])
	size := int64(-1)
	if statErr == nil {
		size = info.Size()
	}
	fmt.Printf("root:       %d\n", tree.Root())
	fmt.Printf("node_ctr:   %d\n", tree.NodeCtr())
	fmt.Printf("file size:  %d bytes\n", size)
	return 0
}

// cmdSeed inserts count random, non-zero keys for manual exploration. It
// owns the PRNG entirely: the core index never generates keys itself.
func cmdSeed(args []string, opts bptree.StoreOptions) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: bptreedemo seed <path> <count>")
		return 2
	}
	count, err := strconv.Atoi(args[1])
	if err != nil || count <= 0 {
		fmt.Fprintln(os.Stderr, bad("ERROR"), "count must be a positive integer")
		return 2
	}

	tree, err := bptree.Load(args[0], opts)
	if err != nil {
		tree, err = bptree.New(args[0], opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	defer tree.Close()

	registry := payloads.NewRegistry()
	inserted := 0
	for i := 0; i < count; i++ {
		key := rand.Int64N(1<<62) + 1 // never 0, the reserved sentinel
		payloadID := registry.Put([]byte(fmt.Sprintf("seed-%d", i)))
		if err := tree.Insert(key, payloadID); err != nil && err != bptree.ErrDuplicateKey {
			fmt.Fprintln(os.Stderr, bad("ERROR"), err)
			return 1
		}
		inserted++
	}
	if err := tree.Save(); err != nil {
		fmt.Fprintln(os.Stderr, bad("ERROR"), err)
		return 1
	}
	fmt.Println(ok("OK"), "seeded", inserted, "keys into", args[0])
	return 0
}
