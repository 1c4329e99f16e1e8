package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid. Keys
// should be prefixed per entity kind so different kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CollectionUUID is the stable identifier of a managed collection.
func CollectionUUID(name string) uuid.UUID {
	return UUID("collections:collection:" + strings.ToLower(strings.TrimSpace(name)))
}

// FieldUUID is the stable identifier of a managed collection field.
func FieldUUID(collectionID uuid.UUID, fieldName string) uuid.UUID {
	return UUID("collections:field:" + collectionID.String() + ":" + strings.ToLower(strings.TrimSpace(fieldName)))
}
