package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"agriconnect/models"
)

// ErrInvalidTransition is returned for any status change the lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid status transition")

// Transition is one allowed status change and the user type that may make it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserType    `json:"actor"`
}

type move struct {
	to    models.OrderStatus
	actor models.UserType
}

// statuses in lifecycle order
var statuses = []models.OrderStatus{models.StatusPending, models.StatusCompleted, models.StatusCancelled}

// lifecycle lists the moves out of each status. A status with no moves is terminal.
var lifecycle = map[models.OrderStatus][]move{
	models.StatusPending: {
		{to: models.StatusCompleted, actor: models.UserFarmer},
		// stock goes back on the shelf
		{to: models.StatusCancelled, actor: models.UserFarmer},
	},
	models.StatusCompleted: nil,
	models.StatusCancelled: nil,
}

// NextStatuses returns the statuses reachable from status by anyone
func NextStatuses(status models.OrderStatus) []models.OrderStatus {
	var next []models.OrderStatus
	for _, m := range lifecycle[status] {
		if !containsStatus(next, m.to) {
			next = append(next, m.to)
		}
	}
	return next
}

func IsTerminal(status models.OrderStatus) bool {
	return len(lifecycle[status]) == 0
}

// TerminalStatuses returns every status an order can never leave
func TerminalStatuses() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range statuses {
		if IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}

// CanTransition checks if actor may move an order from one status to another
func CanTransition(from, to models.OrderStatus, actor models.UserType) error {
	for _, m := range lifecycle[from] {
		if m.to == to && m.actor == actor {
			return nil
		}
	}

	allowed := "none (terminal state)"
	if next := NextStatuses(from); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		allowed = strings.Join(names, ", ")
	}
	return fmt.Errorf("%w: %s -> %s is not allowed for %s; valid next states: %s",
		ErrInvalidTransition, from, to, actor, allowed)
}

// GetAllTransitions flattens the lifecycle for API clients
func GetAllTransitions() []Transition {
	var out []Transition
	for _, s := range statuses {
		for _, m := range lifecycle[s] {
			out = append(out, Transition{From: s, To: m.to, Actor: m.actor})
		}
	}
	return out
}

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
