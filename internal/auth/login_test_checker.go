package auth

import "context"

// LoginTestChecker is used in unit tests in place of the redis backed LoginChecker.
type LoginTestChecker struct {
	LoggedSessions map[string]bool
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]bool{},
	}
}

func (c *LoginTestChecker) IsLogged(_ context.Context, token string) (bool, error) {
	logged, ok := c.LoggedSessions[token]
	return ok && logged, nil
}
