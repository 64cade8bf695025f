package domain

import "time"

// Driver is the minimal view of a driver the compliance engine needs:
// existence, and the company a journey is billed to.
// Full driver management lives outside this service.
type Driver struct {
	ID            int64
	Name          string
	LicenseNumber string
	CompanyID     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
