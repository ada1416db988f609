package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

func (s *Service) CreateProduct(ctx context.Context, actor models.Actor, product models.Product) (models.Product, error) {
	if err := requireRole(actor, models.RoleSeller); err != nil {
		return models.Product{}, fmt.Errorf("service.Service.CreateProduct: %w", err)
	}
	if err := validateProduct(product); err != nil {
		return models.Product{}, fmt.Errorf("service.Service.CreateProduct: %w", err)
	}

	product.Id = s.newID()
	product.SellerId = actor.ID
	if product.SellerName == "" {
		product.SellerName = actor.Name
	}

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertProduct(ctx, product)
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.CreateProduct: %w", err)
	}

	s.logger.Debug("product created", zap.String("product", product.Id), zap.String("seller", actor.ID))
	return product.Clone(), nil
}

// UpdateProduct replaces the stored product with the same id. Owner and id
// are kept from the stored record.
func (s *Service) UpdateProduct(ctx context.Context, actor models.Actor, product models.Product) (models.Product, error) {
	if err := requireRole(actor, models.RoleSeller); err != nil {
		return models.Product{}, fmt.Errorf("service.Service.UpdateProduct: %w", err)
	}
	if err := validateProduct(product); err != nil {
		return models.Product{}, fmt.Errorf("service.Service.UpdateProduct: %w", err)
	}

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		stored, err := ownedProduct(ctx, tx, actor, product.Id)
		if err != nil {
			return err
		}

		product.SellerId = stored.SellerId
		if product.SellerName == "" {
			product.SellerName = stored.SellerName
		}
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.UpdateProduct: %w", err)
	}

	return product.Clone(), nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor models.Actor, productId string) error {
	if err := requireRole(actor, models.RoleSeller); err != nil {
		return fmt.Errorf("service.Service.DeleteProduct: %w", err)
	}

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		if _, err := ownedProduct(ctx, tx, actor, productId); err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, productId)
	})
	if err != nil {
		return fmt.Errorf("service.Service.DeleteProduct: %w", err)
	}

	s.logger.Debug("product deleted", zap.String("product", productId), zap.String("seller", actor.ID))
	return nil
}

func (s *Service) GetProduct(ctx context.Context, actor models.Actor, productId string) (models.Product, error) {
	if err := checkActor(actor); err != nil {
		return models.Product{}, fmt.Errorf("service.Service.GetProduct: %w", err)
	}

	var product models.Product
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var ok bool
		var err error
		product, ok, err = tx.Product(ctx, productId)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNoProduct
		}
		return nil
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.GetProduct: %w", err)
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, actor models.Actor, filter models.ProductFilter) ([]models.Product, error) {
	if err := checkActor(actor); err != nil {
		return nil, fmt.Errorf("service.Service.ListProducts: %w", err)
	}

	var products []models.Product
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		products, err = tx.Products(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListProducts: %w", err)
	}
	return products, nil
}

func ownedProduct(ctx context.Context, tx repository.Tx, actor models.Actor, productId string) (models.Product, error) {
	product, ok, err := tx.Product(ctx, productId)
	if err != nil {
		return product, err
	}
	if !ok {
		return product, models.ErrNoProduct
	}
	if product.SellerId != actor.ID {
		return product, fmt.Errorf("%w: product %s belongs to another seller", models.ErrUnauthorized, productId)
	}
	return product, nil
}
