package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/integrii/flaggy"
)

var version = "dev"

func main() {
	flaggy.SetName("cubetick-admin")
	flaggy.SetDescription("offline tools for cubetick world data")
	flaggy.SetVersion(version)

	dataDir := "./data"
	worldID := ""
	flaggy.String(&dataDir, "d", "data", "Runtime data directory")
	flaggy.String(&worldID, "w", "world", "World id")

	worlds := flaggy.NewSubcommand("worlds")
	worlds.Description = "List worlds under the data directory"

	dbCmd := flaggy.NewSubcommand("db")
	dbCmd.Description = "Query the sqlite index: snapshots|ticks|edits|incidents"
	var (
		dbPath string
		query  = "snapshots"
		limit  = 20
		client string
		kind   string
	)
	dbCmd.String(&dbPath, "", "db", "Sqlite path (defaults to the world's index)")
	dbCmd.Int(&limit, "n", "limit", "Result limit")
	dbCmd.String(&client, "", "client", "client_id filter (edits)")
	dbCmd.String(&kind, "", "kind", "kind filter (incidents)")
	dbCmd.AddPositionalValue(&query, "query", 1, false, "What to list")

	state := flaggy.NewSubcommand("state")
	state.Description = "Print /v1/state of a running server"
	baseURL := "http://127.0.0.1:8080"
	state.String(&baseURL, "u", "url", "Server base url")

	rollback := flaggy.NewSubcommand("rollback")
	rollback.Description = "Undo client block edits inside a box, writing a new snapshot"
	var rb rollbackOptions
	rollback.String(&rb.snapPath, "s", "snapshot", "Snapshot to roll back (defaults to latest)")
	rollback.String(&rb.aabb, "b", "aabb", "Box x1,y1,z1:x2,y2,z2 (required)")
	rollback.UInt64(&rb.sinceTick, "", "since-tick", "Undo edits from this tick (inclusive)")
	rollback.UInt64(&rb.toTick, "", "to-tick", "Undo edits up to this tick (defaults to the snapshot tick)")
	rollback.String(&rb.actor, "", "actor", "Only undo edits by this client id")
	rollback.String(&rb.outPath, "o", "out", "Output snapshot path")

	flaggy.AttachSubcommand(worlds, 1)
	flaggy.AttachSubcommand(dbCmd, 1)
	flaggy.AttachSubcommand(state, 1)
	flaggy.AttachSubcommand(rollback, 1)
	flaggy.Parse()

	worldDir := filepath.Join(dataDir, "worlds", worldID)
	var err error
	switch {
	case worlds.Used:
		err = listWorlds(os.Stdout, filepath.Join(dataDir, "worlds"))
	case dbCmd.Used:
		if dbPath == "" {
			if strings.TrimSpace(worldID) == "" {
				exitUsage("missing --world or --db")
			}
			dbPath = filepath.Join(worldDir, "index", "world.sqlite")
		}
		err = runQuery(os.Stdout, dbPath, query, queryFilter{limit: limit, client: client, kind: kind})
	case state.Used:
		err = printState(os.Stdout, baseURL)
	case rollback.Used:
		if strings.TrimSpace(worldID) == "" {
			exitUsage("missing --world")
		}
		if strings.TrimSpace(rb.aabb) == "" {
			exitUsage("missing --aabb")
		}
		err = runRollback(os.Stdout, worldDir, rb)
	default:
		flaggy.ShowHelpAndExit("")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func exitUsage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}

func listWorlds(out io.Writer, base string) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintln(out, e.Name())
		}
	}
	return nil
}
