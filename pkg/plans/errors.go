package plans

import "errors"

var (
	ErrParseFailed   = errors.New("failed to parse plan catalog")
	ErrInvalidPlanID = errors.New("invalid plan id")
	ErrDuplicatePlan = errors.New("duplicate plan id in catalog")
	ErrPlanNotFound  = errors.New("plan not found in catalog")
)
