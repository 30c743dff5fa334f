package review

import (
	"context"
	"errors"
	"testing"

	"fempowered-storefront/internal/domain"
	productrepo "fempowered-storefront/internal/repository/product"
)

type memoryReviews struct {
	nextID int64
	byID   map[int64]domain.Review
	paid   map[[2]int64]bool // [userID, productID]
}

func newMemoryReviews() *memoryReviews {
	return &memoryReviews{nextID: 1, byID: map[int64]domain.Review{}, paid: map[[2]int64]bool{}}
}

func (r *memoryReviews) Create(_ context.Context, in domain.Review) (*domain.Review, error) {
	for _, existing := range r.byID {
		if existing.ProductID == in.ProductID && existing.UserID == in.UserID {
			return nil, domain.ErrAlreadyExists
		}
	}
	in.ID = r.nextID
	r.nextID++
	r.byID[in.ID] = in
	clone := in
	return &clone, nil
}

func (r *memoryReviews) Update(_ context.Context, id int64, rating int, body string) error {
	rv, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	rv.Rating = rating
	rv.Body = body
	r.byID[id] = rv
	return nil
}

func (r *memoryReviews) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryReviews) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	rv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rv.VerifiedBuyer = r.paid[[2]int64{rv.UserID, rv.ProductID}]
	return &rv, nil
}

func (r *memoryReviews) GetByProductAndUser(_ context.Context, productID, userID int64) (*domain.Review, error) {
	for _, rv := range r.byID {
		if rv.ProductID == productID && rv.UserID == userID {
			clone := rv
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryReviews) ListByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.byID {
		if rv.ProductID == productID {
			rv.VerifiedBuyer = r.paid[[2]int64{rv.UserID, rv.ProductID}]
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *memoryReviews) HasPaidOrderLine(_ context.Context, userID, productID int64) (bool, error) {
	return r.paid[[2]int64{userID, productID}], nil
}

// fixedCatalog serves one known product.
type fixedCatalog struct {
	productrepo.Repository
	product *domain.Product
}

func (c *fixedCatalog) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if c.product != nil && c.product.ID == id {
		return c.product, nil
	}
	return nil, domain.ErrNotFound
}

func newService(reviews *memoryReviews) *Service {
	return New(reviews, &fixedCatalog{product: &domain.Product{ID: 7, Name: "Tee"}})
}

func TestCreate_SetsVerifiedBuyer(t *testing.T) {
	reviews := newMemoryReviews()
	reviews.paid[[2]int64{1, 7}] = true
	svc := newService(reviews)
	user := &domain.User{ID: 1, FullName: "Anna"}

	created, err := svc.Create(context.Background(), user, 7, Input{Rating: 5, Body: "great"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.VerifiedBuyer {
		t.Fatalf("buyer with a paid order line must be verified")
	}
	if created.UserName != "Anna" {
		t.Fatalf("expected reviewer name on response, got %q", created.UserName)
	}

	other := &domain.User{ID: 2}
	unverified, err := svc.Create(context.Background(), other, 7, Input{Rating: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if unverified.VerifiedBuyer {
		t.Fatalf("user without a paid order line must not be verified")
	}
}

func TestCreate_OncePerProduct(t *testing.T) {
	svc := newService(newMemoryReviews())
	user := &domain.User{ID: 1}

	if _, err := svc.Create(context.Background(), user, 7, Input{Rating: 4}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), user, 7, Input{Rating: 5}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_UnknownProduct(t *testing.T) {
	svc := newService(newMemoryReviews())
	if _, err := svc.Create(context.Background(), &domain.User{ID: 1}, 999, Input{Rating: 4}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForUser(t *testing.T) {
	reviews := newMemoryReviews()
	svc := newService(reviews)
	user := &domain.User{ID: 1, FullName: "Anna"}

	if _, err := svc.ForUser(context.Background(), user, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no review, got %v", err)
	}

	created, err := svc.Create(context.Background(), user, 7, Input{Rating: 4, Body: "solid"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := svc.ForUser(context.Background(), user, 7)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if mine.ID != created.ID || mine.Rating != 4 {
		t.Fatalf("unexpected review %+v", mine)
	}
	if mine.UserName != "Anna" {
		t.Fatalf("expected reviewer name on response, got %q", mine.UserName)
	}

	if _, err := svc.ForUser(context.Background(), &domain.User{ID: 2}, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("another user's lookup must be ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	reviews := newMemoryReviews()
	svc := newService(reviews)
	owner := &domain.User{ID: 1}
	stranger := &domain.User{ID: 2}

	created, err := svc.Create(context.Background(), owner, 7, Input{Rating: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(context.Background(), stranger, created.ID, Input{Rating: 1}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if err := svc.Delete(context.Background(), stranger, created.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}

	updated, err := svc.Update(context.Background(), owner, created.ID, Input{Rating: 2, Body: "shrank in the wash"})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Rating != 2 || updated.Body != "shrank in the wash" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.Delete(context.Background(), owner, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Update(context.Background(), owner, created.ID, Input{Rating: 3}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
