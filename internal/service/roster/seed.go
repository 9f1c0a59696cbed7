package roster

import (
	"context"
	"fmt"

	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// SampleRiders returns the demonstration roster
func SampleRiders() []rider.Input {
	return []rider.Input{
		sample("John Doe", "john.doe@example.com", "Senior Rider", "S1234567A",
			"https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg",
			rider.StatusActive, "+1234567890", rider.VehicleMotorcycle, "MC123456", 4.8, 245),
		sample("Jane Smith", "jane.smith@example.com", "Lead Rider", "S7654321B",
			"https://images.pexels.com/photos/1130626/pexels-photo-1130626.jpeg",
			rider.StatusActive, "+1234567891", rider.VehicleBicycle, "BC789012", 4.9, 189),
		sample("Mike Johnson", "mike.johnson@example.com", "Rider", "S2345678C",
			"https://images.pexels.com/photos/614810/pexels-photo-614810.jpeg",
			rider.StatusInactive, "+1234567892", rider.VehicleCar, "CR345678", 4.5, 156),
	}
}

func sample(name, email, position, nric, image string, status rider.Status, phone string,
	vehicle rider.Vehicle, license string, rating float64, rides int) rider.Input {
	st := string(status)
	return rider.Input{
		Name:           name,
		Email:          email,
		Position:       position,
		NRIC:           nric,
		Image:          &image,
		Status:         &st,
		Phone:          phone,
		Vehicle:        string(vehicle),
		License:        license,
		Rating:         &rating,
		RidesCompleted: &rides,
	}
}

// SeedIfEmpty inserts the sample roster when the store holds no riders.
// It returns the number of riders inserted.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count riders: %w", err)
	}
	if n > 0 {
		s.log.Debug("Roster already populated, skipping seed", logger.Int64("riders", n))
		return 0, nil
	}
	return s.insertSamples(ctx)
}

// Reset empties the store and inserts the sample roster
func (s *Service) Reset(ctx context.Context) (int, error) {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear riders: %w", err)
	}
	s.log.Info("Cleared existing riders")
	return s.insertSamples(ctx)
}

func (s *Service) insertSamples(ctx context.Context) (int, error) {
	inserted := 0
	for _, in := range SampleRiders() {
		if _, err := s.Create(ctx, in); err != nil {
			return inserted, fmt.Errorf("failed to seed rider %s: %w", in.Email, err)
		}
		inserted++
	}
	s.log.Info("Seeded sample riders", logger.Int("count", inserted))
	s.nr.RecordRosterSize(int64(inserted))
	return inserted, nil
}
