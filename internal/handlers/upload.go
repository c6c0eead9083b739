package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
)

const uploadField = "file"

// readUpload validates the multipart upload into a dataset. Any failure
// leaves the caller's session untouched.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*dataset.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.PayloadTooLarge(fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
		}
		return nil, errors.BadRequestWrap(err, "expected a multipart form upload")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.BadRequestWrap(err, "file is required")
	}
	defer file.Close()

	ds, err := dataset.Parse(header.Filename, file)
	if err != nil {
		return nil, datasetError(err)
	}
	return ds, nil
}

func datasetError(err error) error {
	var schemaErr *dataset.SchemaError
	var rowErr *dataset.RowError

	switch {
	case stderrors.As(err, &schemaErr):
		return errors.SchemaWrap(err, schemaErr.Error())
	case stderrors.As(err, &rowErr):
		return errors.ValidationWrap(err, rowErr.Error())
	case stderrors.Is(err, dataset.ErrUnsupportedFormat),
		stderrors.Is(err, dataset.ErrNoRows),
		stderrors.Is(err, dataset.ErrEmptyFile):
		return errors.BadRequestWrap(err, err.Error())
	default:
		return errors.BadRequestWrap(err, "could not read the uploaded file")
	}
}

func serviceError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrNoDataset):
		return errors.NotFound("no dataset loaded, upload a file first")
	case stderrors.Is(err, services.ErrUnknownBranch),
		stderrors.Is(err, services.ErrUnknownProduct):
		return errors.NotFound(err.Error())
	default:
		return errors.InternalWrap(err, "failed to compute dashboard")
	}
}

func uploadResult(err error) string {
	if err == nil {
		return "accepted"
	}
	return string(errors.As(err).Code)
}
