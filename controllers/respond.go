package controllers

import (
	"errors"
	"net/http"

	"mystore/services"
	"mystore/utils"
)

var errTooLarge = errors.New("image file too large")

// respondServiceError maps a service failure onto the HTTP error taxonomy:
// validation 400, missing entity 404, anything else 500 with the cause.
func respondServiceError(w http.ResponseWriter, err error, internalMessage string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		utils.RespondError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, services.ErrCartNotFound):
		utils.RespondError(w, http.StatusNotFound, "Cart not found")
	default:
		utils.RespondInternal(w, internalMessage, err)
	}
}
