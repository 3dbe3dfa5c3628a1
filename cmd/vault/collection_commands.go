package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/collection"
)

// runCollection handles the collection subcommands.
func (a *app) runCollection(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.listCollections(ctx, nil)
	}

	switch args[0] {
	case "list":
		return a.listCollections(ctx, args[1:])
	case "add":
		return a.addCollection(ctx, args[1:])
	case "rm":
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return fmt.Errorf("usage: vault collection rm <name>")
		}
		if err := a.ledger.Delete(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Collection %q deleted.\n", name)
		return nil
	case "cards":
		return a.collectionCards(ctx, args[1:])
	default:
		return fmt.Errorf("unknown collection subcommand: %s", args[0])
	}
}

func (a *app) listCollections(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collection list", flag.ContinueOnError)
	filter := fs.String("filter", "", "only collections whose name contains this text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := a.ledger.List(ctx)
	if err != nil {
		return err
	}

	// Totals always cover every collection, as the filter only narrows the list.
	return a.formatter.FormatCollections(a.out, collection.Filter(all, *filter), collection.Sum(all))
}

func (a *app) addCollection(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collection add", flag.ContinueOnError)
	name := fs.String("name", "", "collection name")
	count := fs.Int("count", 0, "number of cards")
	value := fs.Float64("value", 0, "estimated value in euros")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := a.ledger.Add(ctx, *name, *count, *value)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Collection %q added (%d cards, %.2f€).\n", c.Name, c.Count, c.Value)
	return nil
}

// collectionCards lists the cards of a remote collection.
func (a *app) collectionCards(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: vault collection cards <name> [-filter text]")
	}

	username, err := a.currentUser()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("collection cards", flag.ContinueOnError)
	filter := fs.String("filter", "", "only cards whose name contains this text")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cards, err := a.client.CollectionCards(ctx, username, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch collection: %w", err)
	}

	return a.formatter.FormatCards(a.out, card.FilterByName(cards, *filter))
}
