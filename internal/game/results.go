package game

import (
	"fmt"
	"strings"
)

// Region is the part of the country a subscription belongs to.
type Region string

const (
	RegionAarhus     Region = "AARHUS"
	RegionCopenhagen Region = "COPENHAGEN"
	RegionOdense     Region = "ODENSE"
	RegionAalborg    Region = "AALBORG"
)

// ParseRegion accepts the region name in any case.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RegionAarhus, RegionCopenhagen, RegionOdense, RegionAalborg:
		return r, nil
	default:
		return "", fmt.Errorf("unknown region %q", s)
	}
}

// UpdateResult is the domain outcome of a mutating player operation.
type UpdateResult string

const (
	UpdateOK              UpdateResult = "UPDATE_OK"
	FailAsNotFound        UpdateResult = "FAIL_AS_NOT_FOUND"
	FailAsNotCreator      UpdateResult = "FAIL_AS_NOT_CREATOR"
	FailAsAlreadyExisting UpdateResult = "FAIL_AS_ALREADY_EXISTING"
)

// UpdateResultFromStatus translates a storage status into an UpdateResult.
func UpdateResultFromStatus(s Status) (UpdateResult, error) {
	if s.IsSuccess() {
		return UpdateOK, nil
	}
	switch s {
	case StatusUnauthorized:
		return FailAsNotCreator, nil
	case StatusNotFound:
		return FailAsNotFound, nil
	case StatusForbidden:
		return FailAsAlreadyExisting, nil
	default:
		return "", fmt.Errorf("no update result for status %s", s)
	}
}

// LoginResult is the outcome of a login attempt.
type LoginResult string

const (
	LoginSuccess                    LoginResult = "LOGIN_SUCCESS"
	LoginSuccessPlayerAlreadyInCave LoginResult = "LOGIN_SUCCESS_PLAYER_ALREADY_LOGGED_IN"
	LoginFailedUnknownSubscription  LoginResult = "LOGIN_FAILED_UNKNOWN_SUBSCRIPTION"
	LoginFailedServerError          LoginResult = "LOGIN_FAILED_SERVER_ERROR"
)

// Valid reports whether the result represents an established session.
func (r LoginResult) Valid() bool {
	return r == LoginSuccess || r == LoginSuccessPlayerAlreadyInCave
}

// LogoutResult is the outcome of a logout.
type LogoutResult string

const (
	LogoutSuccess       LogoutResult = "SUCCESS"
	LogoutNotInCave     LogoutResult = "PLAYER_NOT_IN_CAVE"
	LogoutServerFailure LogoutResult = "SERVER_FAILED_TO_LOGOUT"
)
