package services

import (
	"context"
	"fmt"

	"grana/internal/core"
	applog "grana/internal/log"
)

// CategoryService orchestrates category writes and seeds the default set
// for new users.
type CategoryService struct {
	store     CategoryStore
	publisher ChangePublisher
	notifier  ChangeNotifier
}

func NewCategoryService(store CategoryStore, publisher ChangePublisher, notifier ChangeNotifier) *CategoryService {
	return &CategoryService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
	}
}

// CategoryPatch carries the fields of a partial update.
type CategoryPatch struct {
	Name  *string
	Color *string
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("save category: %w", err)
	}
	s.afterWrite(ctx, OpCreated, id, c.OwnerID)
	return id, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id int64, patch CategoryPatch) (core.Category, error) {
	cats, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return core.Category{}, err
	}
	var found *core.Category
	for i := range cats {
		if cats[i].ID == id {
			found = &cats[i]
			break
		}
	}
	if found == nil {
		return core.Category{}, ErrNotFound
	}

	c := *found
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}

	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.afterWrite(ctx, OpUpdated, id, ownerID)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteCategory(ctx, ownerID, id); err != nil {
		return err
	}
	s.afterWrite(ctx, OpDeleted, id, ownerID)
	return nil
}

// SeedDefaults creates the default category set for a new user. Failures are
// logged and skipped so registration never fails over a seed category.
func (s *CategoryService) SeedDefaults(ctx context.Context, ownerID int64) {
	for _, c := range core.DefaultCategories {
		c.OwnerID = ownerID
		if _, err := s.store.CreateCategory(ctx, c); err != nil {
			applog.FromContext(ctx).Error("Failed to seed default category",
				applog.FieldOwnerID, ownerID,
				"name", c.Name,
				applog.FieldError, err)
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, ownerID)
	}
}

func (s *CategoryService) afterWrite(ctx context.Context, op string, id, ownerID int64) {
	publishChange(ctx, s.publisher, EntityCategory, op, id, ownerID)
	if s.notifier != nil {
		s.notifier.Notify(ctx, ownerID)
	}
}
