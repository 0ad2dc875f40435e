package errors

// Error code constants. Errors carry code + params; the frontend owns
// translation. Backend logs are always in English.

// Issue error codes.
const (
	CodeIssueNotFound     = "ISSUE_NOT_FOUND"
	CodeIssueCreateFail   = "ISSUE_CREATION_FAILED"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeCommentNotFound   = "COMMENT_NOT_FOUND"
)

// Machine/location error codes.
const (
	CodeMachineNotFound  = "MACHINE_NOT_FOUND"
	CodeLocationNotFound = "LOCATION_NOT_FOUND"
	CodeMachineExists    = "MACHINE_ALREADY_EXISTS"
	CodeLocationExists   = "LOCATION_ALREADY_EXISTS"
)

// Organization/membership error codes.
const (
	CodeOrgNotFound      = "ORGANIZATION_NOT_FOUND"
	CodeNotAMember       = "NOT_A_MEMBER"
	CodeOrgPermDenied    = "ORG_PERMISSION_DENIED"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeMembershipExists = "MEMBERSHIP_ALREADY_EXISTS"
)

// Notification error codes.
const (
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	CodePreferenceSaveFailed = "PREFERENCE_SAVE_FAILED"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Validation error codes.
const (
	CodeInvalidRequestField = "INVALID_REQUEST_FIELD"
	CodeValidationFailed    = "VALIDATION_FAILED"
)

// Convenience constructors using predefined codes.

// ErrIssueNotFoundf creates an issue not found error.
func ErrIssueNotFoundf(issueID string) *AppError {
	return NotFound(CodeIssueNotFound, "issue not found").
		WithParams(Params{"issue_id": issueID})
}

// ErrMachineNotFoundf creates a machine not found error.
func ErrMachineNotFoundf(machineID string) *AppError {
	return NotFound(CodeMachineNotFound, "machine not found").
		WithParams(Params{"machine_id": machineID})
}

// ErrInvalidTransitionf creates an invalid status transition error.
func ErrInvalidTransitionf(from, to string) *AppError {
	return BadRequest(CodeInvalidTransition, "illegal issue status transition").
		WithParams(Params{"from": from, "to": to})
}

// ErrOrgPermDeniedf creates an organization permission error.
func ErrOrgPermDeniedf(required string) *AppError {
	return Forbidden(CodeOrgPermDenied, "insufficient role for this operation").
		WithParams(Params{"required_role": required})
}
