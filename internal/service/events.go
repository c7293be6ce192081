package service

import (
	"olexvol/liftlog/internal/realtime"
)

// Mutation-to-event bridge. After a write has committed (and ownership was
// already validated), the service announces the change on a resource key:
//
//   - creating a child publishes on the parent's key, which is what lets a
//     client watching a workout learn about new exercises without knowing
//     their ids in advance;
//   - updating an entity publishes on the entity's own key;
//   - deleting an entity publishes on its parent's key, since it is the
//     parent's child list that changed.
//
// Supersets and dropsets have no key kind of their own: a superset is
// addressed through its workout's key, a dropset under the sets kind (it
// sits at the same tree level as a set). Publishing is best-effort; a failed
// delivery never fails the mutation.

// ChangeEvent is the payload published for every committed mutation. The
// multiplexer treats everything beyond the routing resource field as opaque.
type ChangeEvent struct {
	Action string `json:"action"` // created | updated | deleted
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Entity any    `json:"entity,omitempty"`
}

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

func (s *workoutService) publishCreated(parent realtime.Key, kind, id string, entity any) {
	s.publisher.Publish(parent, ChangeEvent{Action: actionCreated, Kind: kind, ID: id, Entity: entity})
}

func (s *workoutService) publishUpdated(key realtime.Key, kind, id string, entity any) {
	s.publisher.Publish(key, ChangeEvent{Action: actionUpdated, Kind: kind, ID: id, Entity: entity})
}

func (s *workoutService) publishDeleted(parent realtime.Key, kind, id string) {
	s.publisher.Publish(parent, ChangeEvent{Action: actionDeleted, Kind: kind, ID: id})
}
