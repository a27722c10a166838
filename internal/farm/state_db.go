package farm

import (
	"context"
	"encoding/json"
	"fmt"
)

// StateBackend stores named JSON blobs. postgres.Store implements it.
type StateBackend interface {
	LoadState(ctx context.Context, name string) ([]byte, bool, error)
	SaveState(ctx context.Context, name string, data []byte) error
}

// DBStateStore stores game state under Name in a StateBackend.
type DBStateStore struct {
	Backend StateBackend
	Name    string
}

func (s *DBStateStore) Load(ctx context.Context) (State, bool, error) {
	if s == nil || s.Backend == nil {
		return NewState(), false, nil
	}
	data, found, err := s.Backend.LoadState(ctx, s.Name)
	if err != nil || !found {
		return NewState(), false, err
	}
	st := NewState()
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("parse state: %w", err)
	}
	if st.PerTap == 0 {
		st.PerTap = 1
	}
	return st, true, nil
}

func (s *DBStateStore) Save(ctx context.Context, st State) error {
	if s == nil || s.Backend == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.Backend.SaveState(ctx, s.Name, data)
}
