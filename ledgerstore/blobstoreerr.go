package ledgerstore

import (
	"errors"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const (
	azblobBlobNotFound      = "BlobNotFound"
	azblobBlobAlreadyExists = "BlobAlreadyExists"
	azblobConditionNotMet   = "ConditionNotMet"
)

// AsStorageError returns the azure storage error carried by err, if any.
func AsStorageError(err error) (azStorageBlob.StorageError, bool) {
	serr := &azStorageBlob.StorageError{}
	//nolint
	ierr, ok := err.(*azStorageBlob.InternalError)
	if ierr != nil && ok && ierr.As(&serr) {
		return *serr, true
	}
	var wrapped *azStorageBlob.StorageError
	if errors.As(err, &wrapped) && wrapped != nil {
		return *wrapped, true
	}
	return azStorageBlob.StorageError{}, false
}

// storageErrorCode returns the azure error code of err, or "" for errors
// that did not come from the storage service (network failures for
// example).
func storageErrorCode(err error) string {
	serr, ok := AsStorageError(err)
	if !ok {
		return ""
	}
	return string(serr.ErrorCode)
}
