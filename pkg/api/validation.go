package api

import "strings"

var validDifficulties = []string{
	DifficultyE, DifficultyD, DifficultyC, DifficultyB, DifficultyA, DifficultyS,
}

var validStatuses = []string{
	StatusPending, StatusInProgress, StatusOnHold, StatusCompleted,
}

var validPriorities = []string{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent,
}

// ValidDifficulty reports whether d is a known task difficulty.
func ValidDifficulty(d string) bool {
	return contains(validDifficulties, d)
}

// ValidStatus reports whether s is a known board status.
func ValidStatus(s string) bool {
	return contains(validStatuses, s)
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	return contains(validPriorities, p)
}

// Difficulties returns the valid difficulty names joined for error messages.
func Difficulties() string { return strings.Join(validDifficulties, ", ") }

// Statuses returns the valid status names joined for error messages.
func Statuses() string { return strings.Join(validStatuses, ", ") }

// Priorities returns the valid priority names joined for error messages.
func Priorities() string { return strings.Join(validPriorities, ", ") }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
