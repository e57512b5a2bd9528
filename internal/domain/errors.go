package domain

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidRecord      = errors.New("invalid donation record")
	ErrDuplicateApplicant = errors.New("duplicate applicant")
	ErrAlreadyClaimed     = errors.New("entry already claimed")
	ErrContended          = errors.New("queue head contended")
	ErrQueueEmpty         = errors.New("assistance queue is empty")
	ErrNotFound           = errors.New("not found")
	ErrStorageFailure     = errors.New("storage failure")
	ErrInvalidToken       = errors.New("invalid claim token")
)
