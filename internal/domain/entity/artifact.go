package entity

// ArtifactKind classifies an uploaded artifact.
type ArtifactKind string

const (
	// ArtifactProfilePhoto is a portrait of the account holder.
	ArtifactProfilePhoto ArtifactKind = "profile_photo"
	// ArtifactIdentityDocument is a licence or identity document photo.
	ArtifactIdentityDocument ArtifactKind = "identity_document"
)

// ArtifactRef points at a binary object held by the artifact storage.
type ArtifactRef struct {
	Key         string       // Object key inside the bucket.
	Kind        ArtifactKind // What the artifact represents.
	Size        int64        // Size in bytes.
	ContentType string       // Sniffed MIME type.
}

// ArtifactUpload is an artifact received from a client that has not been stored yet.
type ArtifactUpload struct {
	Filename string
	Data     []byte
}
