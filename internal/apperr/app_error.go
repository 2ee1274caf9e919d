package apperr

import "github.com/tuanvumaihuynh/autoparts-admin/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	TransportErrorCode       = "TRANSPORT_FAILED"
	NotFoundInLocalStateCode = "NOT_FOUND_IN_LOCAL_STATE"
	RecordNotFoundCode       = "RECORD_NOT_FOUND"
	UnknownCollectionCode    = "UNKNOWN_COLLECTION"
	IDMismatchCode           = "ID_MISMATCH"
	RecordConflictCode       = "RECORD_CONFLICT"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	// TransportErr wraps any failed round trip to the backing REST API.
	TransportErr = zerror.NewBadGateway(TransportErrorCode, "request to the backing api failed")

	// NotFoundInLocalStateErr is returned when an id is absent from a store's loaded list.
	NotFoundInLocalStateErr = zerror.NewNotFound(NotFoundInLocalStateCode, "record not found in the loaded list")

	RecordNotFoundErr    = zerror.NewNotFound(RecordNotFoundCode, "record not found")
	UnknownCollectionErr = zerror.NewNotFound(UnknownCollectionCode, "unknown collection")
	IDMismatchErr        = zerror.NewBadRequest(IDMismatchCode, "body id does not match path id")
	RecordConflictErr    = zerror.NewConflict(RecordConflictCode, "record already exists")
)
