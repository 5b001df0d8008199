package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/sermondex/internal/db"
)

func TestHSetMulti_PipelinesChunks(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("HSET", "sd:chunk:v1_0", "video_id", "v1"),
			mock.Match("HSET", "sd:chunk:v1_1", "video_id", "v1"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "sd:chunk:v1_0", Fields: map[string]string{"video_id": "v1"}},
		{Key: "sd:chunk:v1_1", Fields: map[string]string{"video_id": "v1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_FailureNamesKey(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "sd:verse:a", Fields: map[string]string{"text": "x"}},
		{Key: "sd:verse:b", Fields: map[string]string{"text": "y"}},
	})
	if !isDBError(err, db.OpHSet) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped HSET error, got %v", err)
	}
}

func TestHSetMulti_NoRoundTrip(t *testing.T) {
	// nil client: any command would panic
	s := NewStoreForTest(nil)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Errorf("empty batch: unexpected error %v", err)
	}
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "ok", Fields: map[string]string{"a": "b"}},
		{Key: "empty"},
	})
	if err == nil {
		t.Error("expected rejection of an item without fields")
	}
	if err := s.Del(context.Background()); err != nil {
		t.Errorf("empty delete: unexpected error %v", err)
	}
}

func TestHGetAll(t *testing.T) {
	tests := []struct {
		name    string
		reply   rueidis.RedisResult
		want    string
		wantErr func(error) bool
	}{
		{
			name: "found",
			reply: mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"book": mock.RedisString("요한복음"),
			})),
			want: "요한복음",
		},
		{
			name:    "missing",
			reply:   mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
			wantErr: func(err error) bool { return errors.Is(err, db.ErrKeyNotFound) },
		},
		{
			name:    "transport",
			reply:   mock.ErrorResult(context.DeadlineExceeded),
			wantErr: func(err error) bool { return isDBError(err, db.OpHGetAll) },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, c := newMockStore(t)
			c.EXPECT().Do(gomock.Any(), mock.Match("HGETALL", "sd:verse:1")).Return(tc.reply)

			m, err := s.HGetAll(context.Background(), "sd:verse:1")
			if tc.wantErr != nil {
				if !tc.wantErr(err) {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m["book"] != tc.want {
				t.Errorf("expected %q, got %v", tc.want, m)
			}
		})
	}
}

func TestDel(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "sd:chunk:v_0", "sd:chunk:v_1")).
		Return(mock.Result(mock.RedisInt64(2)))

	if err := s.Del(context.Background(), "sd:chunk:v_0", "sd:chunk:v_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	for name, tc := range map[string]struct {
		count int64
		want  bool
	}{
		"present": {1, true},
		"absent":  {0, false},
	} {
		t.Run(name, func(t *testing.T) {
			s, c := newMockStore(t)
			c.EXPECT().
				Do(gomock.Any(), mock.Match("EXISTS", "sd:transcript:v")).
				Return(mock.Result(mock.RedisInt64(tc.count)))

			got, err := s.Exists(context.Background(), "sd:transcript:v")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
