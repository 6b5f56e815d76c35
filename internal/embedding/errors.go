package embedding

import (
	"errors"

	"github.com/hyperjump/docqa/internal/models"
)

func providerError(err error) error {
	var pe *models.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	reason, retryable := models.ClassifyRemoteError(err)
	return &models.ProviderError{Reason: reason, Retryable: retryable, Err: err}
}

func canceledError(err error) error {
	return &models.ProviderError{Reason: models.ReasonCanceled, Err: err}
}
