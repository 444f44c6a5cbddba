package app

import (
	"context"

	"golang.org/x/sync/errgroup"
	"quiz-results-service/internal/domain"
)

// Authorize decides whether userID may view company-scoped result data.
// The checks run in a fixed order: missing company, then the owner rule when
// the requester has no membership, then role and company of the membership.
func Authorize(userID int64, member *domain.Membership, company *domain.Company) error {
	if company == nil {
		return domain.ErrCompanyNotFound
	}
	if member == nil {
		if userID == company.OwnerID {
			return nil
		}
		return domain.ErrNotOwner
	}
	if member.Role != domain.RoleAdmin {
		return domain.ErrInsufficientRole
	}
	if member.CompanyID != company.ID {
		return domain.ErrWrongCompany
	}
	return nil
}

// companyAccess resolves the requester's membership and the target company
// concurrently, then runs Authorize.
type companyAccess struct {
	dir Directory
}

func (a companyAccess) byName(ctx context.Context, userID int64, companyName string) (domain.Company, error) {
	return a.check(ctx, userID, func(ctx context.Context) (*domain.Company, error) {
		return a.dir.CompanyByName(ctx, companyName)
	})
}

func (a companyAccess) byID(ctx context.Context, userID, companyID int64) (domain.Company, error) {
	return a.check(ctx, userID, func(ctx context.Context) (*domain.Company, error) {
		return a.dir.Company(ctx, companyID)
	})
}

func (a companyAccess) check(ctx context.Context, userID int64, lookup func(context.Context) (*domain.Company, error)) (domain.Company, error) {
	var (
		member  *domain.Membership
		company *domain.Company
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		member, err = a.dir.Membership(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		company, err = lookup(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Company{}, err
	}
	if err := Authorize(userID, member, company); err != nil {
		return domain.Company{}, err
	}
	return *company, nil
}
