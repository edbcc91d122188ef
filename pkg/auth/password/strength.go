package password

import (
	"regexp"
	"strings"
)

// commonPasswords is a denylist of passwords too common to accept,
// matched case-insensitively.
var commonPasswords = map[string]bool{
	"123456": true, "password": true, "12345678": true, "qwerty": true,
	"123456789": true, "12345": true, "1234": true, "111111": true,
	"1234567": true, "dragon": true, "123123": true, "baseball": true,
	"abc123": true, "football": true, "monkey": true, "letmein": true,
	"696969": true, "shadow": true, "master": true, "666666": true,
	"qwertyuiop": true, "123321": true, "mustang": true, "1234567890": true,
	"admin": true, "welcome": true, "azerty": true,
}

var (
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`\d`)
	specialRe    = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	sequentialRe = regexp.MustCompile(`01234|12345|23456|34567|45678|56789|98765|87654|76543|65432|54321|43210`)

	allUpperRe = regexp.MustCompile(`^[A-Z]+$`)
	allLowerRe = regexp.MustCompile(`^[a-z]+$`)
	allDigitRe = regexp.MustCompile(`^\d+$`)
)

// Validate checks a password against the strength rules. It returns
// true when every rule passes, otherwise false plus the human-readable
// messages of every violated rule.
func Validate(pw string) (bool, []string) {
	var violations []string

	if len(pw) < 8 {
		violations = append(violations, "password must be at least 8 characters long")
	}
	if !upperRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if !lowerRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if !digitRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one digit")
	}
	if !specialRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one special character (!@#$%^&*...)")
	}
	if commonPasswords[strings.ToLower(pw)] {
		violations = append(violations, "password is too common and easy to guess")
	}
	if sequentialRe.MatchString(pw) {
		violations = append(violations, "password must not contain sequential digit runs")
	}

	return len(violations) == 0, violations
}

// Score rates a password from 0 to 100: length earns up to 40 points,
// each character class adds diversity points, single-class and common
// passwords are penalized.
func Score(pw string) int {
	if pw == "" {
		return 0
	}

	score := len(pw) * 4
	if score > 40 {
		score = 40
	}

	if upperRe.MatchString(pw) {
		score += 10
	}
	if lowerRe.MatchString(pw) {
		score += 10
	}
	if digitRe.MatchString(pw) {
		score += 10
	}
	if specialRe.MatchString(pw) {
		score += 15
	}

	if allUpperRe.MatchString(pw) || allLowerRe.MatchString(pw) || allDigitRe.MatchString(pw) {
		score -= 20
	}
	if commonPasswords[strings.ToLower(pw)] {
		score -= 30
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Strength maps a score to a coarse label.
func Strength(score int) string {
	switch {
	case score < 30:
		return "very weak"
	case score < 50:
		return "weak"
	case score < 70:
		return "fair"
	case score < 90:
		return "strong"
	default:
		return "very strong"
	}
}
