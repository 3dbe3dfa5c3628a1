package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/card"
)

// runVisit looks a card up by name, shows it and records it as visited.
func (a *app) runVisit(ctx context.Context, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("usage: vault visit <card name>")
	}

	results, err := a.client.SearchCards(ctx, name)
	if err != nil {
		return fmt.Errorf("card search failed: %w", err)
	}

	c, ok := bestMatch(results, name)
	if !ok {
		return fmt.Errorf("%w: no card named %q", api.ErrNotFound, name)
	}

	if err := a.formatter.FormatCard(a.out, c); err != nil {
		return err
	}

	return a.session.AddVisitedCard(ctx, c)
}

// bestMatch prefers a card whose name equals name ignoring case, then the
// first result.
func bestMatch(results []card.Card, name string) (card.Card, bool) {
	if len(results) == 0 {
		return card.Card{}, false
	}

	for _, c := range results {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return results[0], true
}

// runHistory lists the visited cards, or clears them with "history clear".
func (a *app) runHistory(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		if err := a.session.ClearVisitedCards(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "History cleared.")
		return nil
	}

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	filter := fs.String("filter", "", "only cards whose name contains this text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.formatter.FormatCards(a.out, card.FilterByName(a.session.VisitedCards(), *filter))
}

// runCommander shows a random commander and records it as visited.
func (a *app) runCommander(ctx context.Context) error {
	c, err := a.client.RandomCommander(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch commander: %w", err)
	}

	if err := a.formatter.FormatCard(a.out, c); err != nil {
		return err
	}

	return a.session.AddVisitedCard(ctx, c)
}

// runSets lists the card sets.
func (a *app) runSets(ctx context.Context) error {
	options, err := a.client.FetchExpansions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch sets: %w", err)
	}

	return a.formatter.FormatOptions(a.out, options)
}

// runDeck handles the deck subcommands of the signed-in user.
func (a *app) runDeck(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: vault deck show <deck> [-filter text] | vault deck rm <deck> <card name>")
	}

	username, err := a.currentUser()
	if err != nil {
		return err
	}

	switch args[0] {
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("usage: vault deck show <deck> [-filter text]")
		}
		fs := flag.NewFlagSet("deck show", flag.ContinueOnError)
		filter := fs.String("filter", "", "only cards whose name contains this text")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}

		cards, err := a.client.DeckCards(ctx, username, args[1])
		if err != nil {
			return fmt.Errorf("failed to fetch deck: %w", err)
		}
		return a.formatter.FormatCards(a.out, card.FilterByName(cards, *filter))

	case "rm":
		if len(args) < 3 {
			return fmt.Errorf("usage: vault deck rm <deck> <card name>")
		}
		deck, cardName := args[1], strings.Join(args[2:], " ")

		if err := a.client.RemoveCardFromDeck(ctx, deck, username, cardName); err != nil {
			return fmt.Errorf("failed to remove card: %w", err)
		}

		// Show what is left.
		cards, err := a.client.DeckCards(ctx, username, deck)
		if err != nil {
			return fmt.Errorf("failed to fetch deck: %w", err)
		}
		return a.formatter.FormatCards(a.out, card.RemoveByName(cards, cardName))

	default:
		return fmt.Errorf("unknown deck subcommand: %s", args[0])
	}
}
