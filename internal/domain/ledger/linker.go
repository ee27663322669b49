package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Linker backfills the account foreign key on entries that arrived before
// their account did. Linking must happen before aggregation for an account;
// the cycle service calls LinkPending as a precondition, not concurrently.
type Linker struct {
	repo Repository
}

// NewLinker creates a new linker
func NewLinker(repo Repository) *Linker {
	return &Linker{repo: repo}
}

// LinkPending links all unlinked entries for an item to the given account
// when the entry's mask suffix or account hint matches. Entries that cannot
// be matched stay unlinked and are reported in the skipped count.
func (l *Linker) LinkPending(ctx context.Context, itemID, accountID, mask string) (linked, skipped int, err error) {
	entries, err := l.repo.ListUnlinkedByItem(ctx, itemID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list unlinked entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}

	var ids []string
	for _, e := range entries {
		if matchesAccount(e, mask) {
			ids = append(ids, e.ID)
		} else {
			skipped++
		}
	}

	if len(ids) > 0 {
		if err := l.repo.LinkToAccount(ctx, ids, accountID); err != nil {
			return 0, skipped, fmt.Errorf("failed to link entries: %w", err)
		}
	}

	log.Printf("Linked %d/%d pending entries for item %s to account %s",
		len(ids), len(entries), itemID, accountID)

	return len(ids), skipped, nil
}

// matchesAccount matches an unlinked entry to an account by card mask suffix
// in the entry name. Single-account items always match.
func matchesAccount(e *Entry, mask string) bool {
	if mask == "" {
		return true
	}
	return strings.Contains(e.Name, mask) || strings.Contains(e.MerchantName, mask)
}
