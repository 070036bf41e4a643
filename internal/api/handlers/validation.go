package handlers

import (
	"fmt"
	"sync"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the proposal_action and proposal_status tags to gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("proposal_action", validateProposalAction); err != nil {
			return
		}
		err = v.RegisterValidation("proposal_status", validateProposalStatus)
	})
	return err
}

func validateProposalAction(fl validator.FieldLevel) bool {
	_, ok := domain.ParseProposalAction(fl.Field().String())
	return ok
}

// validateProposalStatus accepts an empty value; combine with required when needed.
func validateProposalStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := domain.ParseProposalStatus(value)
	return ok
}
