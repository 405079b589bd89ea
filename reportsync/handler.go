// Package reportsync holds the per-entity sync handlers shared by the broker
// consumer and the backfill job.
package reportsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/appctx"
	"github.com/mmdatafocus/sitesync/utils"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func ParseAction(v string) (Action, error) {
	switch a := Action(v); a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", v)
}

type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Syncer brings the warehouse in line with the current source state of one
// entity.
type Syncer interface {
	Sync(ctx context.Context, naturalId string, action Action) (Outcome, error)
}

// Handler is the fetch/validate/load/delete contract of one entity type.
// Fetch returns nil (or ErrNotFound) when the document is gone; Validate and
// Fetch may return ErrValidation for incomplete source writes. Count, when
// set, adds the loaded document to the run's Stats.
type Handler[T any] struct {
	Entity   string
	Fetch    func(ctx context.Context, naturalId string) (*T, error)
	Validate func(doc *T) error
	Load     func(ctx context.Context, doc *T) error
	Delete   func(ctx context.Context, naturalId string) error
	Count    func(doc *T, stats *Stats)
	Logger   *logrus.Logger
}

// Sync runs the handler state machine. Skips return OutcomeSkipped with a
// nil error; faults return OutcomeFailed and the wrapped error.
func (h Handler[T]) Sync(ctx context.Context, naturalId string, action Action) (Outcome, error) {
	log := h.Logger.WithFields(logrus.Fields{
		"field":      "reportsync",
		"entity":     h.Entity,
		"natural_id": naturalId,
		"action":     action,
	})
	if cid := appctx.CorrelationId(ctx); cid != "" {
		log = log.WithField("correlation_id", cid)
	}
	if src, ok := appctx.GetString(ctx, appctx.ContextKeySource); ok {
		log = log.WithField("source", src)
	}
	dryRun := appctx.IsDryRun(ctx)
	log.Debug("received")

	if action == ActionDeleted {
		if dryRun {
			return OutcomeDone, nil
		}
		if err := h.Delete(ctx, naturalId); err != nil {
			log.WithError(err).Error("delete failed")
			return OutcomeFailed, fmt.Errorf("%s %s delete: %w", h.Entity, naturalId, err)
		}
		log.Info("archived")
		return OutcomeDone, nil
	}

	doc, err := h.Fetch(ctx, naturalId)
	switch {
	case errors.Is(err, ErrNotFound), err == nil && doc == nil:
		log.Warn("source document not found, skipping")
		return OutcomeSkipped, nil
	case errors.Is(err, ErrValidation):
		log.WithError(err).Warn("source document incomplete, skipping")
		return OutcomeSkipped, nil
	case err != nil:
		log.WithError(err).Error("fetch failed")
		return OutcomeFailed, fmt.Errorf("%s %s fetch: %w", h.Entity, naturalId, err)
	}

	if h.Validate != nil {
		if err := h.Validate(doc); err != nil {
			log.WithError(err).Warn("validation failed, skipping")
			return OutcomeSkipped, nil
		}
	}

	if !dryRun {
		err := h.Load(ctx, doc)
		switch {
		case errors.Is(err, ErrValidation):
			log.WithError(err).Warn("nothing loadable, skipping")
			return OutcomeSkipped, nil
		case err != nil:
			log.WithError(err).Error("load failed")
			return OutcomeFailed, fmt.Errorf("%s %s load: %w", h.Entity, naturalId, err)
		}
	}
	if h.Count != nil {
		if stats := statsFrom(ctx); stats != nil {
			h.Count(doc, stats)
		}
	}
	log.WithField("dry_run", dryRun).Info("loaded")
	return OutcomeDone, nil
}

var structValidator = validator.New()

// validateStruct runs the struct tags of a source document.
func validateStruct(doc any) error {
	err := structValidator.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(utils.ProcessValidationErrors(fieldErrs)))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
