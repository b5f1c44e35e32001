package services

import (
	"context"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

type SubmissionLister interface {
	List(ctx context.Context, bookingID int64, p domain.Pagination) ([]models.Submission, error)
}

// SubmissionService reads the audit log of accepted wizard submissions.
type SubmissionService struct {
	Repo SubmissionLister
}

func (s SubmissionService) List(ctx context.Context, bookingID int64, p domain.Pagination) ([]models.Submission, error) {
	if s.Repo == nil {
		return []models.Submission{}, nil
	}
	return s.Repo.List(ctx, bookingID, p)
}
