package services

import (
	"fmt"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"
)

// lookup maps a missing row to NotFound and wraps anything else.
func lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if repos.IsNotFound(err) {
		return domain.NotFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
