package api

import (
	"errors"
	"strings"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p PlacePlanePayload) Validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Orientation)) {
	case "up", "down", "left", "right":
	case "":
		return errors.New("orientation is required")
	default:
		return errors.New("orientation must be one of up, down, left, right")
	}
	return nil
}
