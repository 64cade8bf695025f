package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
)

// DriverService implements the small slice of driver management this service
// owns: registering a driver and looking one up.
type DriverService struct {
	drivers repo.DriverRepo
}

// NewDriverService constructs a DriverService backed by the provided DriverRepo.
func NewDriverService(drivers repo.DriverRepo) *DriverService {
	return &DriverService{drivers: drivers}
}

// Create validates and persists a new driver.
// Returns domain.ErrValidation if the name is blank or the company id is negative.
func (s *DriverService) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	driver.Name = strings.TrimSpace(driver.Name)
	driver.LicenseNumber = strings.TrimSpace(driver.LicenseNumber)
	if driver.Name == "" {
		return domain.Driver{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if driver.CompanyID < 0 {
		return domain.Driver{}, fmt.Errorf("%w: company_id must not be negative", domain.ErrValidation)
	}
	result, err := s.drivers.Create(ctx, driver)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single driver.
// Returns domain.ErrDriverNotFound if no driver with that ID exists.
func (s *DriverService) GetByID(ctx context.Context, id int64) (domain.Driver, error) {
	d, err := lookupDriver(ctx, s.drivers, id)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.GetByID: %w", err)
	}
	return d, nil
}

// lookupDriver fetches a driver and translates a generic not-found into
// domain.ErrDriverNotFound so callers can tell which resource was missing.
func lookupDriver(ctx context.Context, drivers repo.DriverRepo, id int64) (domain.Driver, error) {
	d, err := drivers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Driver{}, fmt.Errorf("%w: id %d", domain.ErrDriverNotFound, id)
		}
		return domain.Driver{}, err
	}
	return d, nil
}

// requireDriver is lookupDriver for callers that only need existence.
func requireDriver(ctx context.Context, drivers repo.DriverRepo, id int64) error {
	ok, err := drivers.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: id %d", domain.ErrDriverNotFound, id)
	}
	return nil
}

// Exists reports whether a driver with the given ID exists.
func (s *DriverService) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := s.drivers.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service.DriverService.Exists: %w", err)
	}
	return ok, nil
}
