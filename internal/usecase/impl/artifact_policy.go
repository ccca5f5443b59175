package impl

import (
	"fmt"
	"path"

	"marketplace/config"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/errors"
	"marketplace/internal/util"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	minProfilePhotos      = 1
	minIdentityDocuments  = 2
	defaultMaxArtifactLen = 20 << 20
)

// artifactPolicy decides which uploads are acceptable. Types are sniffed from content,
// never taken from the client-supplied filename.
type artifactPolicy struct {
	maxSize int64
	allowed []string
}

func newArtifactPolicy(cfg *config.Config) artifactPolicy {
	policy := artifactPolicy{maxSize: defaultMaxArtifactLen}
	if cfg != nil && cfg.Artifacts != nil {
		if cfg.Artifacts.MaxSizeBytes > 0 {
			policy.maxSize = cfg.Artifacts.MaxSizeBytes
		}
		policy.allowed = cfg.Artifacts.AllowedTypes
	}
	if len(policy.allowed) == 0 {
		policy.allowed = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	}

	return policy
}

// stagedArtifact is an upload that passed inspection and is ready to be stored.
type stagedArtifact struct {
	kind        entity.ArtifactKind
	data        []byte
	contentType string
	extension   string
}

func (a stagedArtifact) key(accountID uuid.UUID, index int) string {
	return path.Join("accounts", accountID.String(), string(a.kind), fmt.Sprintf("%d%s", index, a.extension))
}

func (p artifactPolicy) inspect(kind entity.ArtifactKind, upload entity.ArtifactUpload) (stagedArtifact, error) {
	size := int64(len(upload.Data))
	if size == 0 {
		return stagedArtifact{}, errors.Wrapf(domainerrors.ErrInvalidInput, "%s %q is empty", kind, upload.Filename)
	}
	if size > p.maxSize {
		return stagedArtifact{}, errors.Wrapf(domainerrors.ErrInvalidInput,
			"%s %q exceeds the %s limit", kind, upload.Filename, util.FormatBytes(p.maxSize))
	}

	mtype := mimetype.Detect(upload.Data)
	if !mimetype.EqualsAny(mtype.String(), p.allowed...) {
		return stagedArtifact{}, errors.Wrapf(domainerrors.ErrInvalidInput,
			"%s %q has unsupported type %s", kind, upload.Filename, mtype.String())
	}

	return stagedArtifact{
		kind:        kind,
		data:        upload.Data,
		contentType: mtype.String(),
		extension:   mtype.Extension(),
	}, nil
}

// inspectDeliveryAgentUploads checks the document requirements of a delivery agent.
func (p artifactPolicy) inspectDeliveryAgentUploads(photo *entity.ArtifactUpload, documents []entity.ArtifactUpload) ([]stagedArtifact, error) {
	if photo == nil {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "at least %d profile photo is required", minProfilePhotos)
	}
	if len(documents) < minIdentityDocuments {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "at least %d license photos are required", minIdentityDocuments)
	}

	staged := make([]stagedArtifact, 0, 1+len(documents))

	artifact, err := p.inspect(entity.ArtifactProfilePhoto, *photo)
	if err != nil {
		return nil, err
	}
	staged = append(staged, artifact)

	for _, doc := range documents {
		artifact, err := p.inspect(entity.ArtifactIdentityDocument, doc)
		if err != nil {
			return nil, err
		}
		staged = append(staged, artifact)
	}

	return staged, nil
}
