package service

import (
	"context"
	"log"

	"github.com/gumusqr/backend/internal/db"
	"github.com/gumusqr/backend/internal/model"
)

const productImageFolder = "products"

type CatalogRepo interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, sortOrder int, isActive bool) (*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryHasProducts(ctx context.Context, id int64) (bool, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	ListActiveCategories(ctx context.Context) ([]model.MenuCategory, error)
	ListActiveProducts(ctx context.Context) ([]model.MenuProduct, error)
}

type CatalogService struct {
	repo   CatalogRepo
	images ImageStore
}

func NewCatalogService(repo CatalogRepo, images ImageStore) *CatalogService {
	return &CatalogService{repo: repo, images: images}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req model.CategoryRequest) (*model.Category, error) {
	if req.Name == "" {
		return nil, ErrInvalidInput
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return s.repo.CreateCategory(ctx, req.Name, description, sortOrder, isActive)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (*model.Category, error) {
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteCategory refuses to remove a category that still has products; the
// admin has to move or delete them first.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}

	hasProducts, err := s.repo.CategoryHasProducts(ctx, id)
	if err != nil {
		return err
	}
	if hasProducts {
		return ErrCategoryNotEmpty
	}

	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return s.repo.ListProductsByCategory(ctx, categoryID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req model.ProductRequest) (*model.Product, error) {
	if req.CategoryID == nil || req.Name == "" || req.Price == nil {
		return nil, ErrInvalidInput
	}

	if _, err := s.repo.GetCategory(ctx, *req.CategoryID); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	product := model.Product{
		CategoryID: *req.CategoryID,
		Name:       req.Name,
		Price:      *req.Price,
		IsActive:   true,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Allergens != nil {
		product.Allergens = *req.Allergens
	}
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if req.Image != "" {
		url, err := s.images.Upload(ctx, req.Image, productImageFolder)
		if err != nil {
			return nil, wrapUpload(err)
		}
		product.ImageURL = url
	}

	created, err := s.repo.CreateProduct(ctx, &product)
	if err != nil {
		// The uploaded asset is now orphaned; log it so storage can be
		// reconciled, but surface the insert failure.
		if product.ImageURL != "" {
			log.Printf("[Catalog] product insert failed after upload, orphaned asset: %s", product.ImageURL)
		}
		return nil, err
	}
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req model.ProductRequest) (*model.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.CategoryID); err != nil {
			if db.IsNoRows(err) {
				return nil, ErrInvalidInput
			}
			return nil, err
		}
		existing.CategoryID = *req.CategoryID
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Allergens != nil {
		existing.Allergens = *req.Allergens
	}
	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	imageURL, err := replaceImage(ctx, s.images, existing.ImageURL, req.Image, productImageFolder, req.RemoveImage)
	if err != nil {
		return nil, err
	}
	existing.ImageURL = imageURL

	if err := s.repo.UpdateProduct(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}

	deleteAsset(ctx, s.images, existing.ImageURL)

	return s.repo.DeleteProduct(ctx, id)
}

// ListMenu returns the public menu: active categories in display order, each
// carrying its active products.
func (s *CatalogService) ListMenu(ctx context.Context) ([]model.MenuCategory, error) {
	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]model.MenuProduct, len(categories))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	for i := range categories {
		items := byCategory[categories[i].ID]
		if items == nil {
			items = []model.MenuProduct{}
		}
		categories[i].Products = items
	}
	return categories, nil
}
