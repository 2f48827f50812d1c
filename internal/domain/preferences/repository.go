package preferences

import "context"

type Repository interface {
	GetPreference(ctx context.Context, ownerID string) (*Preference, error)
	UpsertPreference(ctx context.Context, preference *Preference) error
}
