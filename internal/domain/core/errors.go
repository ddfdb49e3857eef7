package core

import "evalportal/internal/platform/apperr"

var (
	ErrDepartmentNotFound = apperr.Lookup("department not found")
	ErrPositionNotFound   = apperr.Lookup("position not found")
	ErrEmployeeNotFound   = apperr.Lookup("employee not found")

	ErrDepartmentInUse   = apperr.State("department still has positions or employees")
	ErrPositionInUse     = apperr.State("position still has employees")
	ErrEmployeeHasScores = apperr.State("employee is referenced by score records")

	ErrEmailTaken          = apperr.Constraint("email already registered")
	ErrPositionOutsideDept = apperr.Validation("positionId", "position does not belong to the department")
)
