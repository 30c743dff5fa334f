package review

import (
	"context"
	"errors"

	"fempowered-storefront/internal/domain"
	productrepo "fempowered-storefront/internal/repository/product"
	reviewrepo "fempowered-storefront/internal/repository/review"
)

// ErrNotOwner is returned when a user edits or deletes someone else's review.
var ErrNotOwner = errors.New("review belongs to another user")

// Service enforces the one-review-per-product rule and review ownership.
type Service struct {
	reviews  reviewrepo.Repository
	products productrepo.Repository
}

func New(reviews reviewrepo.Repository, products productrepo.Repository) *Service {
	return &Service{reviews: reviews, products: products}
}

// Input is a review create or update payload.
type Input struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Body   string `json:"body" binding:"max=4000"`
}

// Create writes the user's review of a product. A second review of the same
// product is domain.ErrAlreadyExists; a missing product is domain.ErrNotFound.
func (s *Service) Create(ctx context.Context, user *domain.User, productID int64, in Input) (*domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	created, err := s.reviews.Create(ctx, domain.Review{
		ProductID: productID,
		UserID:    user.ID,
		Rating:    in.Rating,
		Body:      in.Body,
	})
	if err != nil {
		return nil, err
	}
	created.UserName = user.FullName
	created.VerifiedBuyer, err = s.reviews.HasPaidOrderLine(ctx, user.ID, productID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces the rating and body of the user's own review.
func (s *Service) Update(ctx context.Context, user *domain.User, reviewID int64, in Input) (*domain.Review, error) {
	existing, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != user.ID {
		return nil, ErrNotOwner
	}
	if err := s.reviews.Update(ctx, reviewID, in.Rating, in.Body); err != nil {
		return nil, err
	}
	return s.reviews.GetByID(ctx, reviewID)
}

// Delete removes the user's own review.
func (s *Service) Delete(ctx context.Context, user *domain.User, reviewID int64) error {
	existing, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if existing.UserID != user.ID {
		return ErrNotOwner
	}
	return s.reviews.Delete(ctx, reviewID)
}

// ListForProduct returns a product's reviews, newest first.
func (s *Service) ListForProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// ForUser returns the user's own review of a product, domain.ErrNotFound when
// they have not written one.
func (s *Service) ForUser(ctx context.Context, user *domain.User, productID int64) (*domain.Review, error) {
	rv, err := s.reviews.GetByProductAndUser(ctx, productID, user.ID)
	if err != nil {
		return nil, err
	}
	rv.UserName = user.FullName
	return rv, nil
}
