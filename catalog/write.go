package catalog

import (
	"context"
	"errors"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/store"
)

// Writes go straight to the store. Cached list and detail responses are not
// evicted and age out with their TTL.

// Create validates payload and inserts it as a new entity row.
func (s *Service) Create(ctx context.Context, entity string, payload map[string]any) (any, error) {
	const op = "catalog.Service.Create"

	spec, w, err := s.writable(entity)
	if err != nil {
		return nil, err
	}
	if err := spec.Rules(normalize.Record(payload), true); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid "+entity+" payload")
	}

	row := Columns(payload)
	now := s.now().UTC()
	row["created_at"] = now
	row["updated_at"] = now

	out, err := w.Insert(ctx, spec.Table, row)
	if err != nil {
		return nil, writeError(err, "failed to create "+entity)
	}
	logctx.From(ctx).Info("entity created", slog.String("op", op), slog.String("entity", entity))
	return spec.Shape(normalize.Record(out), s.enricher.EnrichOne(ctx, spec.Relations, out)), nil
}

// Update validates payload and applies it to the row with id. Only the
// fields present in payload change.
func (s *Service) Update(ctx context.Context, entity, id string, payload map[string]any) (any, error) {
	const op = "catalog.Service.Update"

	spec, w, err := s.writable(entity)
	if err != nil {
		return nil, err
	}
	if err := spec.Rules(normalize.Record(payload), false); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid "+entity+" payload")
	}

	row := Columns(payload)
	delete(row, "created_at")
	row["updated_at"] = s.now().UTC()

	out, err := w.Update(ctx, spec.Table, id, row)
	if err != nil {
		return nil, writeError(err, "failed to update "+entity+" "+id)
	}
	logctx.From(ctx).Info("entity updated", slog.String("op", op), slog.String("entity", entity), slog.String("id", id))
	return spec.Shape(normalize.Record(out), s.enricher.EnrichOne(ctx, spec.Relations, out)), nil
}

// Delete removes the row with id.
func (s *Service) Delete(ctx context.Context, entity, id string) error {
	const op = "catalog.Service.Delete"

	spec, w, err := s.writable(entity)
	if err != nil {
		return err
	}
	if err := w.Delete(ctx, spec.Table, id); err != nil {
		return writeError(err, "failed to delete "+entity+" "+id)
	}
	logctx.From(ctx).Info("entity deleted", slog.String("op", op), slog.String("entity", entity), slog.String("id", id))
	return nil
}

func (s *Service) writable(entity string) (EntitySpec, store.Writer, error) {
	spec, err := s.spec(entity)
	if err != nil {
		return EntitySpec{}, nil, err
	}
	w, ok := s.store.(store.Writer)
	if !ok {
		return EntitySpec{}, nil, goerrors.New("store does not accept writes", goerrors.CategoryOperation)
	}
	return spec, w, nil
}

func writeError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, msg+": not found")
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg+": "+err.Error())
}

// Columns converts a write payload to snake_case columns. Identifiers and
// nested values such as embedded relation objects are dropped.
func Columns(payload map[string]any) store.Row {
	row := make(store.Row, len(payload))
	for k, v := range payload {
		col := normalize.Snake(k)
		if col == "id" || k == normalize.LegacyIDKey {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		row[col] = v
	}
	return row
}
