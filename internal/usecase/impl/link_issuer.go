package impl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"reportshare/config"
	"reportshare/internal/domain/constants"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/domain/service"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// linkIssuer creates link credentials inside a transaction owned by the caller.
type linkIssuer struct {
	hasher       service.SecretHasher
	qrCode       service.QRCodeService
	baseURL      string
	expiryWindow time.Duration
}

func newLinkIssuer(cfg *config.Config, hasher service.SecretHasher, qrCode service.QRCodeService) *linkIssuer {
	issuer := &linkIssuer{hasher: hasher}
	if cfg.Links != nil {
		issuer.baseURL = cfg.Links.BaseURL
		issuer.expiryWindow = cfg.Links.ExpiryWindow
	}
	if cfg.QRCode != nil && cfg.QRCode.Enabled {
		issuer.qrCode = qrCode
	}

	return issuer
}

// issue supersedes the subject's active links and inserts a fresh one through factory.
// Revocation runs under its own savepoint and is best effort; a failed insert aborts
// the enclosing transaction, which also restores the previous links.
func (i *linkIssuer) issue(
	ctx context.Context,
	logger *slog.Logger,
	factory repository.RepositoryFactory,
	subjectID uuid.UUID,
	now time.Time,
) (*usecase.IssuedLink, error) {
	linkRepo := factory.LinkRepo()

	revoked, err := linkRepo.RevokeActiveLinks(ctx, subjectID, now)
	if err != nil {
		logger.Warn("Failed to revoke previous links, issuing anyway",
			slog.Any("subject_id", subjectID),
			slog.Any("error", err),
		)
	} else if revoked > 0 {
		logger.Debug("Revoked previous links", slog.Any("subject_id", subjectID), slog.Int64("count", revoked))
	}

	token, err := i.hasher.GenerateToken()
	if err != nil {
		logger.Error("Failed to generate link token", slog.Any("error", err))

		return nil, domainerrors.ErrLinkIssueFailed.WrapMessage("generate token")
	}
	passcode, err := i.hasher.GeneratePasscode()
	if err != nil {
		logger.Error("Failed to generate link passcode", slog.Any("error", err))

		return nil, domainerrors.ErrLinkIssueFailed.WrapMessage("generate passcode")
	}

	link := &entity.Link{
		ID:           entity.NewID(),
		SubjectID:    subjectID,
		TokenHash:    i.hasher.Hash(token),
		PasscodeHash: i.hasher.Hash(passcode),
		ExpiresAt:    now.Add(i.expiryWindow),
		CreatedAt:    now,
	}
	if err := linkRepo.CreateLink(ctx, link); err != nil {
		return nil, errors.Wrap(err, "failed to create link")
	}

	return &usecase.IssuedLink{
		LinkID:    link.ID,
		SubjectID: subjectID,
		Token:     token,
		Passcode:  passcode,
		URL:       i.linkURL(subjectID, token),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func (i *linkIssuer) linkURL(subjectID uuid.UUID, token string) string {
	return i.baseURL + constants.ShareLinkPathPrefix + subjectID.String() + "?token=" + url.QueryEscape(token)
}

// attachQRCode renders the link URL as a QR code. Rendering failures only cost the image.
func (i *linkIssuer) attachQRCode(logger *slog.Logger, issued *usecase.IssuedLink) {
	if i.qrCode == nil || issued == nil {
		return
	}

	png, err := i.qrCode.GenerateLinkQR(issued.URL)
	if err != nil {
		logger.Warn("Failed to render link QR code", slog.Any("link_id", issued.LinkID), slog.Any("error", err))

		return
	}
	issued.QRCodePNG = png
}
