// Command bptree-repl is an interactive shell over a single index file,
// for manual exploration: a small sibling to the bptreedemo subcommand
// driver, in the style of a REPL rather than one-shot invocations.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/upsidedownfoxxo/bptree/db"
	"github.com/upsidedownfoxxo/bptree/internal/bptree"
)

const defaultDBPath = "bptree-repl.db"

func main() {
	fmt.Println("bptree REPL - persistent B+-tree index")
	fmt.Println("Type 'help' for available commands")

	opts := bptree.StoreOptions{Fanout: 4, BlockSize: 128, CacheSize: 64}
	database, err := db.Open(defaultDBPath, opts)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			printHelp()
		case "get":
			if len(parts) != 2 {
				fmt.Println("Usage: get <key>")
				continue
			}
			key, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				fmt.Printf("Error: invalid key: %v\n", err)
				continue
			}
			value, found, err := database.Get(key)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if !found {
				fmt.Println("not found")
				continue
			}
			fmt.Printf("%d\n", value)
		case "put":
			if len(parts) != 3 {
				fmt.Println("Usage: put <key> <payload-id>")
				continue
			}
			key, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				fmt.Printf("Error: invalid key: %v\n", err)
				continue
			}
			value, err := strconv.ParseInt(parts[2], 10, 32)
			if err != nil {
				fmt.Printf("Error: invalid payload id: %v\n", err)
				continue
			}
			if err := database.Put(key, int32(value)); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("OK")
		case "sync":
			if err := database.Sync(); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Database synced to disk")
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Printf("Unknown command: %s\n", parts[0])
			printHelp()
		}
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  get <key>                 - Look up a key")
	fmt.Println("  put <key> <payload-id>    - Insert a key (first insert wins; no overwrite)")
	fmt.Println("  sync                      - Flush the cache and commit the metadata block")
	fmt.Println("  help                      - Show this help message")
	fmt.Println("  exit, quit                - Exit the program")
}
