package subscription

import (
	"context"
	"fmt"
)

type stubEntry struct {
	hash   string
	record Record
}

// StubService knows a fixed set of test subscriptions.
type StubService struct {
	entries map[string]stubEntry
}

var stubUsers = []struct {
	login    string
	password string
	record   Record
}{
	{"mikkel_aarskort", "123", Record{PlayerID: "user-001", PlayerName: "Mikkel", GroupName: "grp01", Region: "AARHUS"}},
	{"magnus_aarskort", "312", Record{PlayerID: "user-002", PlayerName: "Magnus", GroupName: "grp01", Region: "COPENHAGEN"}},
	{"mathilde_aarskort", "321", Record{PlayerID: "user-003", PlayerName: "Mathilde", GroupName: "grp02", Region: "AALBORG"}},
	{"reserved_aarskort", "cloudarch", Record{PlayerID: "user-reserved", PlayerName: "ReservedCrunchUser", GroupName: "zzz0", Region: "AARHUS"}},
}

func NewStubService() (*StubService, error) {
	s := &StubService{entries: map[string]stubEntry{}}

	for _, u := range stubUsers {
		hash, err := hashPassword(u.password)
		if err != nil {
			return nil, fmt.Errorf("hashing password of %s: %w", u.login, err)
		}
		s.entries[u.login] = stubEntry{hash: hash, record: u.record}
	}

	return s, nil
}

func (s *StubService) Authorize(ctx context.Context, loginName, password string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	e, ok := s.entries[loginName]
	if !ok {
		return Record{}, ErrUnknownSubscription
	}
	if err := checkPassword(e.hash, password); err != nil {
		return Record{}, err
	}

	rec := e.record
	rec.AccessToken = newToken()
	return rec, nil
}

func (s *StubService) Describe() string {
	return fmt.Sprintf("StubService (%d subscriptions)", len(s.entries))
}

// SaboteurService fails every authorization as if the subscription backend
// were down.
type SaboteurService struct{}

func (SaboteurService) Authorize(context.Context, string, string) (Record, error) {
	return Record{}, fmt.Errorf("subscription service unavailable")
}

func (SaboteurService) Describe() string {
	return "SaboteurService"
}
