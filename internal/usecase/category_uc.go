package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const defaultCategoryCacheSize = 256

// CategoryUsecase manages the two-level category tree. Path lookups, which
// every listing write performs, go through an LRU purged on each mutation.
type CategoryUsecase struct {
	repo   domain.CategoryRepository
	authz  Authorizer
	paths  *lru.Cache[string, *domain.Category]
	logger *logger.Logger
}

func NewCategoryUsecase(repo domain.CategoryRepository, authz Authorizer, cacheSize int, log *logger.Logger) (*CategoryUsecase, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCategoryCacheSize
	}
	paths, err := lru.New[string, *domain.Category](cacheSize)
	if err != nil {
		return nil, err
	}
	return &CategoryUsecase{repo: repo, authz: authz, paths: paths, logger: log.Named("CategoryUsecase")}, nil
}

// FindByPath resolves a category path such as "/bikes/road".
func (uc *CategoryUsecase) FindByPath(ctx context.Context, path string) (*domain.Category, error) {
	path = normalizePath(path)
	if c, ok := uc.paths.Get(path); ok {
		return c, nil
	}
	c, err := uc.repo.FindByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	uc.paths.Add(path, c)
	return c, nil
}

// Exists reports whether path names a category.
func (uc *CategoryUsecase) Exists(ctx context.Context, path string) (bool, error) {
	_, err := uc.FindByPath(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// All returns every top-level category with its subcategories.
func (uc *CategoryUsecase) All(ctx context.Context, p *domain.Principal) ([]domain.CategoryTree, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	top, err := uc.repo.ListByParent(ctx, domain.RootCategory)
	if err != nil {
		return nil, err
	}
	trees := make([]domain.CategoryTree, 0, len(top))
	for _, c := range top {
		subs, err := uc.repo.ListByParent(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		trees = append(trees, domain.CategoryTree{Category: c, Subcategories: subs})
	}
	return trees, nil
}

func (uc *CategoryUsecase) TopLevel(ctx context.Context, p *domain.Principal) ([]*domain.Category, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	return uc.repo.ListByParent(ctx, domain.RootCategory)
}

func (uc *CategoryUsecase) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Category, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, id)
}

func (uc *CategoryUsecase) Subcategories(ctx context.Context, p *domain.Principal, id string) ([]*domain.Category, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListByParent(ctx, c.Path)
}

// Create adds a category. A non-root parent must be an existing top-level
// category, matched case-insensitively.
func (uc *CategoryUsecase) Create(ctx context.Context, p *domain.Principal, name, parent string) (*domain.Category, error) {
	if err := uc.authz.Authorize(p, access.ActionCreate, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "Category name is required.")
	}
	c := domain.NewCategory(name, parent)
	if err := uc.checkParent(ctx, c.Parent); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.paths.Purge()
	uc.logger.Info("Category created", zap.String("category_id", c.ID), zap.String("path", c.Path))
	return c, nil
}

func (uc *CategoryUsecase) Update(ctx context.Context, p *domain.Principal, id string, update domain.CategoryUpdate) (*domain.Category, error) {
	if err := uc.authz.Authorize(p, access.ActionUpdate, access.ResourceCategory, nil); err != nil {
		return nil, err
	}
	if update.Name == nil && update.Parent == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "You need to provide the fields to be updated!")
	}
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, parent := c.Name, c.Parent
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrInvalidInput, "Category name is required.")
		}
	}
	if update.Parent != nil {
		parent = *update.Parent
	}
	newParent, newPath := domain.CategoryPath(name, parent)
	if newParent == c.Path {
		return nil, domain.NewError(domain.ErrInvalidInput, "A category cannot be its own parent.")
	}
	if err := uc.checkParent(ctx, newParent); err != nil {
		return nil, err
	}

	c.Name, c.Parent, c.Path, c.UpdatedAt = name, newParent, newPath, time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.paths.Purge()
	uc.logger.Info("Category updated", zap.String("category_id", c.ID), zap.String("path", c.Path))
	return c, nil
}

func (uc *CategoryUsecase) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := uc.authz.Authorize(p, access.ActionDelete, access.ResourceCategory, nil); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.paths.Purge()
	uc.logger.Info("Category deleted", zap.String("category_id", id))
	return nil
}

func (uc *CategoryUsecase) checkParent(ctx context.Context, parent string) error {
	if parent == domain.RootCategory {
		return nil
	}
	pc, err := uc.FindByPath(ctx, parent)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, "Invalid parent category!")
	}
	if err != nil {
		return err
	}
	if !pc.IsTopLevel() {
		return domain.NewError(domain.ErrInvalidInput, "Subcategories cannot have children.")
	}
	return nil
}

func normalizePath(path string) string {
	path = strings.Trim(strings.ToLower(strings.TrimSpace(path)), "/")
	return "/" + path
}
