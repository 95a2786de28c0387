// Package favourites keeps named expense snapshots addressable by the
// period-scoped composite key "<periodKey>-<localId>".
package favourites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
)

// Registry owns the favourites document. Serialization is the
// engine's responsibility.
type Registry struct {
	port docstore.Port
	favs map[string]core.Favourite
}

// Load reads the favourites document, falling back to empty when it is
// missing or corrupt.
func Load(ctx context.Context, port docstore.Port) *Registry {
	r := &Registry{port: port, favs: make(map[string]core.Favourite)}

	body, err := port.Load(ctx, docstore.DocFavourites)
	if err != nil {
		if !errors.Is(err, docstore.ErrNoDocument) {
			slog.WarnContext(ctx, "Failed loading favourites, starting empty", "error", err)
		}
		return r
	}
	if err := json.Unmarshal(body, &r.favs); err != nil {
		slog.WarnContext(ctx, "Corrupt favourites document, starting empty", "error", err)
		r.favs = make(map[string]core.Favourite)
	}
	return r
}

// Save snapshots the given expense under its owning period.
func (r *Registry) Save(ctx context.Context, periodKey string, e core.Expense, displayName string) (core.Favourite, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return core.Favourite{}, fmt.Errorf("empty favourite name")
	}
	f := core.Favourite{
		OwnerPeriodKey: periodKey,
		LocalID:        e.ID,
		Amount:         e.Amount,
		Category:       e.Category,
		DisplayName:    displayName,
	}
	r.favs[f.Key()] = f
	r.persist(ctx)
	slog.InfoContext(ctx, "Favourite saved", "key", f.Key(), "name", displayName)
	return f, nil
}

// Get returns the favourite stored under the composite key.
func (r *Registry) Get(key string) (core.Favourite, bool) {
	f, ok := r.favs[key]
	return f, ok
}

// Remove deletes the favourite. Removing an unknown key is a no-op.
func (r *Registry) Remove(ctx context.Context, key string) bool {
	if _, ok := r.favs[key]; !ok {
		return false
	}
	delete(r.favs, key)
	r.persist(ctx)
	slog.InfoContext(ctx, "Favourite removed", "key", key)
	return true
}

// List returns all favourites ordered by key.
func (r *Registry) List() []core.Favourite {
	keys := make([]string, 0, len(r.favs))
	for k := range r.favs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]core.Favourite, len(keys))
	for i, k := range keys {
		out[i] = r.favs[k]
	}
	return out
}

// Repoint moves the favourite under a new composite key after
// reification. Amount, category and name persist; only the pointer
// (owning period + local id) changes.
func (r *Registry) Repoint(ctx context.Context, oldKey, newPeriodKey string, newLocalID int64) (core.Favourite, error) {
	f, ok := r.favs[oldKey]
	if !ok {
		return core.Favourite{}, fmt.Errorf("%w: favourite %s", core.ErrNotFound, oldKey)
	}
	delete(r.favs, oldKey)
	f.OwnerPeriodKey = newPeriodKey
	f.LocalID = newLocalID
	r.favs[f.Key()] = f
	r.persist(ctx)
	slog.InfoContext(ctx, "Favourite repointed", "from", oldKey, "to", f.Key())
	return f, nil
}

// SyncExpense propagates an expense edit into any favourite pointing
// at it. Deletes do not call this: orphaned favourites survive as
// independent snapshots.
func (r *Registry) SyncExpense(ctx context.Context, periodKey string, e core.Expense) {
	key := core.FavouriteKey(periodKey, e.ID)
	f, ok := r.favs[key]
	if !ok {
		return
	}
	f.Amount = e.Amount
	f.Category = e.Category
	r.favs[key] = f
	r.persist(ctx)
	slog.InfoContext(ctx, "Favourite synced with edited expense", "key", key)
}

// Reset drops every favourite. Used only by the full engine reset.
func (r *Registry) Reset(ctx context.Context) {
	r.favs = make(map[string]core.Favourite)
	r.persist(ctx)
	slog.InfoContext(ctx, "Favourites reset")
}

func (r *Registry) persist(ctx context.Context) {
	body, err := json.Marshal(r.favs)
	if err != nil {
		slog.ErrorContext(ctx, "Failed encoding favourites", "error", err)
		return
	}
	if err := r.port.Save(ctx, docstore.DocFavourites, body); err != nil {
		slog.ErrorContext(ctx, "Failed saving favourites", "error", err)
	}
}
