package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, snapshot *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error

	// Updates streams every snapshot saved for id until ctx is done.
	Updates(ctx context.Context, id string) (<-chan *entity.Snapshot, error)
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository keeps the latest snapshot of each session for ttl (zero keeps it forever).
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func updatesChannel(id string) string {
	return "session:" + id + ":updates"
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, snapshot *entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(snapshot.ID), snapshotJSON, that.ttl)
		pipe.Publish(ctx, updatesChannel(snapshot.ID), snapshotJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Snapshot, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &snapshot, nil
}

// DeleteByID removes the snapshot and publishes a closed marker so subscribers can stop.
func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	closedJSON, err := json.Marshal(&entity.Snapshot{ID: id, State: entity.StateClosed, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("could not marshal closed marker: %w", err)
	}

	var deleted *redis.IntCmd
	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, sessionKey(id))
		pipe.Publish(ctx, updatesChannel(id), closedJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted.Val() == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *dbSession) Updates(ctx context.Context, id string) (<-chan *entity.Snapshot, error) {
	pubsub := that.client.Subscribe(ctx, updatesChannel(id))

	// wait for the subscription to be confirmed so no update published afterwards is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session updates: %w", err)
	}

	updates := make(chan *entity.Snapshot)

	go func() {
		defer close(updates)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var snapshot entity.Snapshot
				if err := json.Unmarshal([]byte(message.Payload), &snapshot); err != nil {
					continue
				}

				select {
				case updates <- &snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
