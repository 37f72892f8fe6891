package services

import (
	"context"
	"fmt"

	"github.com/torquepoint/autoshop-api/repositories"
	"github.com/torquepoint/autoshop-api/utils"
)

const (
	// probeIncrementMinutes is how far the resolver jumps on each conflict.
	// Fixed and single-direction so the customer always gets the same
	// explainable answer: "30 minutes later".
	probeIncrementMinutes = 30
	// maxProbeAttempts bounds the search regardless of business hours.
	maxProbeAttempts = 10
	// closingHour is the business-hours ceiling. Once a candidate's hour
	// reaches 17:00, the search aborts even with attempts left.
	closingHour = 17
)

// Resolution is the outcome of a successful slot search.
type Resolution struct {
	FinalTime   string // HH:MM, 24-hour
	Rescheduled bool
}

// Scheduler answers slot availability questions and resolves conflicts by
// probing later slots.
type Scheduler struct {
	appointments repositories.AppointmentRepository
}

// NewScheduler creates a scheduler over the appointment store.
func NewScheduler(appointments repositories.AppointmentRepository) *Scheduler {
	return &Scheduler{appointments: appointments}
}

// IsAvailable reports whether the (date, time) slot is free. A slot is taken
// iff an existing appointment occupies the exact pair with status pending or
// approved; rejected and completed appointments do not block it.
func (s *Scheduler) IsAvailable(ctx context.Context, date, timeOfDay string) (bool, error) {
	count, err := s.appointments.CountAtSlot(ctx, date, timeOfDay)
	if err != nil {
		return false, fmt.Errorf("checking slot availability: %w", err)
	}
	return count == 0, nil
}

// Resolve finds a free slot on date starting at requestedTime (HH:MM,
// 24-hour). On conflict it advances 30 minutes and retries, up to 10 probes
// and never at or past 17:00; whichever bound trips first ends the search
// with ErrNoSlotAvailable.
func (s *Scheduler) Resolve(ctx context.Context, date, requestedTime string) (Resolution, error) {
	candidate := requestedTime
	for attempt := 0; attempt < maxProbeAttempts; attempt++ {
		hour, err := utils.HourOf(candidate)
		if err != nil {
			return Resolution{}, &ValidationError{Field: "time", Message: err.Error()}
		}
		if attempt > 0 && hour >= closingHour {
			return Resolution{}, ErrNoSlotAvailable
		}

		available, err := s.IsAvailable(ctx, date, candidate)
		if err != nil {
			return Resolution{}, err
		}
		if available {
			return Resolution{FinalTime: candidate, Rescheduled: candidate != requestedTime}, nil
		}

		next, err := utils.AddMinutes(candidate, probeIncrementMinutes)
		if err != nil {
			return Resolution{}, &ValidationError{Field: "time", Message: err.Error()}
		}
		candidate = next
	}
	return Resolution{}, ErrNoSlotAvailable
}
