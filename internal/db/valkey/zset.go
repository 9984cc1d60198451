package valkey

import (
	"context"

	"github.com/bazaarhq/listing-search/internal/db"
)

// ZAddLex adds members with score 0 so the set orders lexicographically.
func (s *Store) ZAddLex(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(0, m)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes members from a sorted set. Missing members are ignored.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRangeByPrefix returns up to limit members starting with prefix.
func (s *Store) ZRangeByPrefix(ctx context.Context, key, prefix string, limit int) ([]string, error) {
	cmd := s.b().Zrangebylex().Key(key).Min("[" + prefix).Max("[" + prefix + "\xff").
		Limit(0, int64(limit)).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeByLex, Err: err}
	}
	return members, nil
}
