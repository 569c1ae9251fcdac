package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	bolt "go.etcd.io/bbolt"
)

var bucketChallenges = []byte("challenges")

type bboltRecord struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Secret     string `json:"secret"`
	IssuedAt   int64  `json:"issued_at"`
	ExpiresAt  int64  `json:"expires_at"`
	Attempts   int    `json:"attempts"`
}

func (r bboltRecord) challenge() *entity.Challenge {
	return &entity.Challenge{
		ID:         r.ID,
		Identifier: r.Identifier,
		Kind:       entity.Kind(r.Kind),
		Secret:     r.Secret,
		IssuedAt:   time.UnixMilli(r.IssuedAt).UTC(),
		ExpiresAt:  time.UnixMilli(r.ExpiresAt).UTC(),
		Attempts:   r.Attempts,
	}
}

// Bbolt keeps challenges in one bucket of an on-disk database. Only one
// process may open the file at a time.
type Bbolt struct {
	db *bolt.DB
}

func NewBbolt(path string) (*Bbolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("challenge: open bbolt %q: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketChallenges)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("challenge: create bucket: %w", err)
	}

	return &Bbolt{db: db}, nil
}

func (b *Bbolt) Close() error {
	return b.db.Close()
}

func (b *Bbolt) Put(_ context.Context, key string, c entity.Challenge) error {
	data, err := json.Marshal(bboltRecord{
		ID:         c.ID,
		Identifier: c.Identifier,
		Kind:       c.Kind.String(),
		Secret:     c.Secret,
		IssuedAt:   c.IssuedAt.UnixMilli(),
		ExpiresAt:  c.ExpiresAt.UnixMilli(),
		Attempts:   c.Attempts,
	})
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChallenges).Put([]byte(key), data)
	})
}

func (b *Bbolt) Get(_ context.Context, key string) (*entity.Challenge, error) {
	var rec bboltRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketChallenges).Get([]byte(key))
		if data == nil {
			return goerror.ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.challenge(), nil
}

func (b *Bbolt) IncrementAttempts(_ context.Context, key, id string) (int, error) {
	var attempts int
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketChallenges)
		data := bkt.Get([]byte(key))
		if data == nil {
			return goerror.ErrNotFound
		}

		var rec bboltRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if rec.ID != id {
			return goerror.ErrNotFound
		}
		rec.Attempts++
		attempts = rec.Attempts

		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), out)
	})
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

func (b *Bbolt) Delete(_ context.Context, key, id string) (bool, error) {
	var deleted bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketChallenges)
		data := bkt.Get([]byte(key))
		if data == nil {
			return nil
		}

		var rec bboltRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if rec.ID != id {
			return nil
		}
		deleted = true
		return bkt.Delete([]byte(key))
	})
	return deleted, err
}

func (b *Bbolt) Sweep(_ context.Context, now time.Time) (int, error) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketChallenges)

		var expired [][]byte
		if err := bkt.ForEach(func(k, v []byte) error {
			var rec bboltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				// unreadable records are dropped with the expired ones
				expired = append(expired, append([]byte{}, k...))
				return nil
			}
			if now.After(time.UnixMilli(rec.ExpiresAt)) {
				expired = append(expired, append([]byte{}, k...))
			}
			return nil
		}); err != nil {
			return err
		}

		for _, k := range expired {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}
