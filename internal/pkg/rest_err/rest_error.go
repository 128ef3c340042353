package rest_err

import (
	"fmt"
	"net/http"
)

type RestErr struct {
	Message string   `json:"message"`
	Err     string   `json:"error"`
	Code    int      `json:"code"`
	Causes  []Causes `json:"causes,omitempty"`
}

func (r *RestErr) Error() string {
	return r.Message
}

func NewRestErr(message, err string, code int, causes []Causes) *RestErr {
	return &RestErr{
		Message: message,
		Err:     err,
		Code:    code,
		Causes:  causes,
	}
}

func NewBadRequestError(message string) *RestErr {
	return NewRestErr(message, ErrBadRequest, http.StatusBadRequest, nil)
}

func NewBadRequestValidationError(message string, causes []Causes) *RestErr {
	return NewRestErr(message, ErrBadRequest, http.StatusBadRequest, causes)
}

func NewInternalServerError(message string, causes []Causes) *RestErr {
	return NewRestErr(message, ErrInternalServerError, http.StatusInternalServerError, causes)
}

func NewNotFoundError(message string) *RestErr {
	return NewRestErr(message, ErrNotFound, http.StatusNotFound, nil)
}

func NewUnauthorizedError(message string) *RestErr {
	return NewRestErr(message, ErrUnauthorized, http.StatusUnauthorized, nil)
}

func NewForbiddenError(message string) *RestErr {
	return NewRestErr(message, ErrForbidden, http.StatusForbidden, nil)
}

func NewExternalProviderError(message string, causes []Causes) *RestErr {
	return NewRestErr(message, ErrExternalProvider, http.StatusBadGateway, causes)
}

func NewConflictValidationError(message string, causes []Causes) *RestErr {
	return NewRestErr(message, ErrConflict, http.StatusConflict, causes)
}

// NewTierRequiredError é a recusa da API quando o tier do usuário não alcança o exigido.
func NewTierRequiredError(required string) *RestErr {
	return NewRestErr(
		fmt.Sprintf("Acesso negado. É necessário possuir o tier %s ou superior.", required),
		ErrTierRequired,
		http.StatusForbidden,
		[]Causes{NewCause("tier", required)},
	)
}
