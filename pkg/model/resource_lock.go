package model

import (
	"fmt"
	"time"
)

// ResourceLock is a short-lived guard held while an item claiming the
// resource is checked and written. The unique _id makes acquisition atomic.
type ResourceLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func LockID(ref ResourceRef) string {
	return fmt.Sprintf("resource_lock_%s_%s", ref.Type, ref.ID)
}
