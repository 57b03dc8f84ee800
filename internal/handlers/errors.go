package handlers

import (
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

var badRequestOnce sync.Once

// reportValidationAsBadRequest makes huma answer request validation failures,
// such as a url of the wrong JSON type, with 400 instead of 422.
func reportValidationAsBadRequest() {
	badRequestOnce.Do(func() {
		newError := huma.NewError
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			if status == http.StatusUnprocessableEntity {
				status = http.StatusBadRequest
			}

			return newError(status, msg, errs...)
		}
	})
}
