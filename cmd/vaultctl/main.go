// Package main provides vaultctl, an operator tool for inspecting and
// mutating a save file's persistent vault.
//
// Usage:
//
//	vaultctl [flags] list
//	vaultctl [flags] add <item-id> <count>
//	vaultctl [flags] remove <index> [count]
//	vaultctl [flags] sort-rarity
//	vaultctl [flags] sort-alpha
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jmcrae/delve/internal/config"
	"github.com/jmcrae/delve/internal/game/item"
	"github.com/jmcrae/delve/internal/game/storage"
	"github.com/jmcrae/delve/internal/observability"
	"github.com/jmcrae/delve/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	saveID := flag.String("save", "default", "save file identifier")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: vaultctl [flags] <list|add|remove|sort-rarity|sort-alpha> [args]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog, err := item.LoadCatalog(cfg.Content.ItemsDir)
	if err != nil {
		logger.Fatal("loading item catalog", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewVaultRepository(pool.DB(), *saveID)
	backing := storage.NewSaveBacking(repo)

	vault, overflow, err := storage.OpenVault(ctx, storage.KindPlayerVault, backing, catalog, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("opening player vault", zap.Error(err))
	}
	if overflow > 0 {
		logger.Warn("vault contents exceed capacity", zap.Int("overflow", overflow))
	}

	if err := run(ctx, vault, catalog, flag.Args()); err != nil {
		logger.Fatal("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}

func run(ctx context.Context, vault *storage.VaultStore, catalog *item.Catalog, args []string) error {
	switch args[0] {
	case "list":
		return list(vault, catalog)
	case "add":
		if len(args) != 3 {
			return fmt.Errorf("usage: add <item-id> <count>")
		}
		count, err := strconv.Atoi(args[2])
		if err != nil || count < 1 {
			return fmt.Errorf("count must be a positive integer, got %q", args[2])
		}
		overflow, err := vault.AddItem(ctx, args[1], count)
		if err != nil {
			return err
		}
		fmt.Printf("added %d of %s (overflow %d)\n", count-overflow, args[1], overflow)
		return nil
	case "remove":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: remove <index> [count]")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index must be an integer, got %q", args[1])
		}
		count := -1
		if len(args) == 3 {
			if count, err = strconv.Atoi(args[2]); err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got %q", args[2])
			}
		}
		removed, err := vault.RemoveAtSlot(ctx, index, count)
		if err != nil {
			return err
		}
		if removed < 0 {
			return fmt.Errorf("index %d out of range", index)
		}
		fmt.Printf("removed %d from slot %d\n", removed, index)
		return nil
	case "sort-rarity":
		if err := vault.SortByRarity(ctx); err != nil {
			return err
		}
		return list(vault, catalog)
	case "sort-alpha":
		if err := vault.SortAlphabetically(ctx); err != nil {
			return err
		}
		return list(vault, catalog)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func list(vault *storage.VaultStore, catalog *item.Catalog) error {
	items := vault.Grid().Items()
	if len(items) == 0 {
		fmt.Println("vault is empty")
		return nil
	}
	for i, it := range items {
		tmpl := catalog.Resolve(it.ItemID)
		fmt.Printf("%4d  %-24s %-12s x%d\n", i, tmpl.Name, tmpl.RarityValue(), it.Count)
	}
	fmt.Printf("%d stacks, %d units\n", len(items), vault.Grid().TotalUnits())
	return nil
}
