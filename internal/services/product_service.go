package services

import (
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"
)

type ProductService interface {
	GetAllProducts() ([]models.Product, error)
	GetProductByID(id uint) (*models.Product, error)
	GetCategories() ([]models.Category, error)
	GetProductsByCategory(categoryID uint) ([]models.Product, error)

	// RecommendGift maps the four quiz answers to a category slug and an
	// occasion tag.
	RecommendGift(recipient, occasion, budget, personalization string) (string, string)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{productRepo: productRepo, categoryRepo: categoryRepo}
}

func (s *productService) GetAllProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "product listing", Err: err}
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "product lookup", Err: err}
	}
	return product, nil
}

func (s *productService) GetCategories() ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "category listing", Err: err}
	}
	return categories, nil
}

func (s *productService) GetProductsByCategory(categoryID uint) ([]models.Product, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "category lookup", Err: err}
	}

	products, err := s.productRepo.GetByCategoryID(categoryID)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "product listing", Err: err}
	}
	return products, nil
}

func (s *productService) RecommendGift(recipient, occasion, budget, personalization string) (string, string) {
	var category string
	switch {
	case personalization == "personalized":
		category = "personalized"
	case recipient == "romantic":
		category = "flowers"
	case recipient == "professional":
		category = "corporate"
	case budget == "premium" || budget == "high":
		category = "hampers"
	default:
		category = "personalized"
	}
	return category, occasion
}
